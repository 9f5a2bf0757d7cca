package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"StockRadar/internal/model"
)

// nseIndexNames resolves the shared index identifiers to the display names
// the NSE API expects. Identifiers outside this table are not served by NSE
// and fall through to the next provider.
var nseIndexNames = map[string]string{
	"^NSEI":    "NIFTY 50",
	"^NSEBANK": "NIFTY BANK",
	"^CNXSC":   "NIFTY SMALLCAP 250",
}

// nseClient is the shared HTTP client for the NSE endpoints. NSE rejects
// requests without browser-like headers and throttles aggressive callers,
// hence the limiter.
type nseClient struct {
	BaseURL string
	Client  *http.Client
	limiter *rate.Limiter
}

func newNSEClient(baseURL, proxyURL string) *nseClient {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &nseClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		limiter: rate.NewLimiter(rate.Every(400*time.Millisecond), 2),
	}
}

func (c *nseClient) get(ctx context.Context, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nse fetch: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nse read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nse: status %d", resp.StatusCode)
	}
	return body, nil
}

// NSEHistoricalProvider serves full daily history from the NSE archives API.
// Equity queries are pinned to the EQ series.
type NSEHistoricalProvider struct {
	client *nseClient
}

func NewNSEHistoricalProvider(baseURL, proxyURL string) *NSEHistoricalProvider {
	return &NSEHistoricalProvider{client: newNSEClient(baseURL, proxyURL)}
}

func (p *NSEHistoricalProvider) Name() string { return "nse-historical" }

type nseHistoricalResponse struct {
	Data []struct {
		Timestamp string  `json:"CH_TIMESTAMP"`
		Open      float64 `json:"CH_OPENING_PRICE"`
		High      float64 `json:"CH_TRADE_HIGH_PRICE"`
		Low       float64 `json:"CH_TRADE_LOW_PRICE"`
		Close     float64 `json:"CH_CLOSING_PRICE"`
		Volume    float64 `json:"CH_TOT_TRADED_QTY"`
	} `json:"data"`
}

func (p *NSEHistoricalProvider) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	to := time.Now()
	from := to.AddDate(0, 0, -days)
	path := fmt.Sprintf("/api/historical/cm/equity?symbol=%s&series=[%%22EQ%%22]&from=%s&to=%s",
		url.QueryEscape(strings.ToUpper(symbol)),
		from.Format("02-01-2006"), to.Format("02-01-2006"))

	body, err := p.client.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var result nseHistoricalResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("nse decode: %w", err)
	}

	bars := make([]model.OHLCV, 0, len(result.Data))
	for _, row := range result.Data {
		ts, err := time.Parse("2006-01-02", row.Timestamp)
		if err != nil {
			continue
		}
		if row.Open <= 0 || row.High <= 0 || row.Low <= 0 || row.Close <= 0 {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:   ts,
			Open:   row.Open,
			High:   row.High,
			Low:    row.Low,
			Close:  row.Close,
			Volume: row.Volume,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

type nseIndexHistoryResponse struct {
	Data struct {
		Records []struct {
			Timestamp string  `json:"EOD_TIMESTAMP"`
			Open      float64 `json:"EOD_OPEN_INDEX_VAL"`
			High      float64 `json:"EOD_HIGH_INDEX_VAL"`
			Low       float64 `json:"EOD_LOW_INDEX_VAL"`
			Close     float64 `json:"EOD_CLOSE_INDEX_VAL"`
		} `json:"indexCloseOnlineRecords"`
	} `json:"data"`
}

func (p *NSEHistoricalProvider) FetchIndexBars(ctx context.Context, indexID string, days int) ([]model.OHLCV, error) {
	name, ok := nseIndexNames[indexID]
	if !ok {
		return nil, fmt.Errorf("nse: unsupported index %q", indexID)
	}
	to := time.Now()
	from := to.AddDate(0, 0, -days)
	path := fmt.Sprintf("/api/historical/indicesHistory?indexType=%s&from=%s&to=%s",
		url.QueryEscape(name), from.Format("02-01-2006"), to.Format("02-01-2006"))

	body, err := p.client.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var result nseIndexHistoryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("nse decode: %w", err)
	}

	bars := make([]model.OHLCV, 0, len(result.Data.Records))
	for _, row := range result.Data.Records {
		ts, err := time.Parse("02-Jan-2006", row.Timestamp)
		if err != nil {
			continue
		}
		if row.Close <= 0 {
			continue
		}
		bars = append(bars, model.OHLCV{
			Time:  ts,
			Open:  row.Open,
			High:  row.High,
			Low:   row.Low,
			Close: row.Close,
		})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

// NSEQuoteProvider is the last-resort source: it only exposes the latest
// quote, so equity results are a single synthetic bar and index results are
// the two closes needed for a one-day change.
type NSEQuoteProvider struct {
	client *nseClient
}

func NewNSEQuoteProvider(baseURL, proxyURL string) *NSEQuoteProvider {
	return &NSEQuoteProvider{client: newNSEClient(baseURL, proxyURL)}
}

func (p *NSEQuoteProvider) Name() string { return "nse-quote" }

type nseQuoteResponse struct {
	PriceInfo struct {
		LastPrice         float64 `json:"lastPrice"`
		PreviousClose     float64 `json:"previousClose"`
		TotalTradedVolume float64 `json:"totalTradedVolume"`
	} `json:"priceInfo"`
}

// FetchDailyBars synthesizes one bar from the quote endpoint. True intraday
// high/low are unavailable, so a 1% band around the traded range stands in:
// high = max(price, prevClose)*1.01, low = min(price, prevClose)*0.99,
// open = prevClose. Exactly one bar marks the series as quote-only downstream.
func (p *NSEQuoteProvider) FetchDailyBars(ctx context.Context, symbol string, _ int) ([]model.OHLCV, error) {
	path := "/api/quote-equity?symbol=" + url.QueryEscape(strings.ToUpper(symbol))
	body, err := p.client.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var result nseQuoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("nse decode: %w", err)
	}

	last := result.PriceInfo.LastPrice
	prev := result.PriceInfo.PreviousClose
	if last <= 0 || prev <= 0 {
		return nil, fmt.Errorf("nse: no usable quote for %s", symbol)
	}
	high := last
	low := prev
	if prev > last {
		high, low = prev, last
	}
	return []model.OHLCV{{
		Time:   time.Now(),
		Open:   prev,
		High:   high * 1.01,
		Low:    low * 0.99,
		Close:  last,
		Volume: result.PriceInfo.TotalTradedVolume,
	}}, nil
}

type nseIndexQuoteResponse struct {
	Data []struct {
		LastPrice     float64 `json:"lastPrice"`
		PreviousClose float64 `json:"previousClose"`
	} `json:"data"`
}

func (p *NSEQuoteProvider) FetchIndexBars(ctx context.Context, indexID string, _ int) ([]model.OHLCV, error) {
	name, ok := nseIndexNames[indexID]
	if !ok {
		return nil, fmt.Errorf("nse: unsupported index %q", indexID)
	}
	path := "/api/index-equities?index=" + url.QueryEscape(name)
	body, err := p.client.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var result nseIndexQuoteResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("nse decode: %w", err)
	}
	if len(result.Data) == 0 {
		return nil, fmt.Errorf("nse: no index data for %s", name)
	}

	last := result.Data[0].LastPrice
	prev := result.Data[0].PreviousClose
	if last <= 0 || prev <= 0 {
		return nil, fmt.Errorf("nse: no usable index quote for %s", name)
	}
	high, low := last, prev
	if prev > last {
		high, low = prev, last
	}
	now := time.Now()
	return []model.OHLCV{
		{Time: now.AddDate(0, 0, -1), Open: prev, High: prev, Low: prev, Close: prev},
		{Time: now, Open: prev, High: high, Low: low, Close: last},
	}, nil
}
