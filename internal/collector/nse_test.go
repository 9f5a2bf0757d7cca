package collector

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNSEHistorical_FetchDailyBars(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		w.Write([]byte(`{"data":[
			{"CH_TIMESTAMP":"2025-03-04","CH_OPENING_PRICE":101,"CH_TRADE_HIGH_PRICE":103,"CH_TRADE_LOW_PRICE":100,"CH_CLOSING_PRICE":102,"CH_TOT_TRADED_QTY":500000},
			{"CH_TIMESTAMP":"2025-03-03","CH_OPENING_PRICE":100,"CH_TRADE_HIGH_PRICE":102,"CH_TRADE_LOW_PRICE":99,"CH_CLOSING_PRICE":101,"CH_TOT_TRADED_QTY":400000},
			{"CH_TIMESTAMP":"bad-date","CH_OPENING_PRICE":1,"CH_TRADE_HIGH_PRICE":1,"CH_TRADE_LOW_PRICE":1,"CH_CLOSING_PRICE":1,"CH_TOT_TRADED_QTY":1}
		]}`))
	}))
	defer srv.Close()

	p := NewNSEHistoricalProvider(srv.URL, "")
	bars, err := p.FetchDailyBars(context.Background(), "reliance", 120)
	require.NoError(t, err)
	require.Len(t, bars, 2, "unparseable rows are skipped")

	assert.Contains(t, gotPath, "symbol=RELIANCE", "symbol must be upper-cased for NSE")
	assert.Contains(t, gotPath, "series=")
	assert.True(t, bars[0].Time.Before(bars[1].Time), "bars must come back ascending")
	assert.Equal(t, 101.0, bars[0].Close)
	assert.Equal(t, 102.0, bars[1].Close)
}

func TestNSEHistorical_IndexNameResolution(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		w.Write([]byte(`{"data":{"indexCloseOnlineRecords":[
			{"EOD_TIMESTAMP":"03-Mar-2025","EOD_OPEN_INDEX_VAL":22000,"EOD_HIGH_INDEX_VAL":22100,"EOD_LOW_INDEX_VAL":21900,"EOD_CLOSE_INDEX_VAL":22050},
			{"EOD_TIMESTAMP":"04-Mar-2025","EOD_OPEN_INDEX_VAL":22050,"EOD_HIGH_INDEX_VAL":22300,"EOD_LOW_INDEX_VAL":22000,"EOD_CLOSE_INDEX_VAL":22280}
		]}}`))
	}))
	defer srv.Close()

	p := NewNSEHistoricalProvider(srv.URL, "")
	bars, err := p.FetchIndexBars(context.Background(), "^NSEI", 7)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Contains(t, gotPath, "indexType=NIFTY+50")
	assert.Equal(t, 22280.0, bars[1].Close)

	_, err = p.FetchIndexBars(context.Background(), "^UNKNOWN", 7)
	assert.Error(t, err, "unknown index identifiers are a provider failure")
}

func TestNSEQuote_SyntheticBarFormula(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"priceInfo":{"lastPrice":105,"previousClose":100,"totalTradedVolume":750000}}`))
	}))
	defer srv.Close()

	p := NewNSEQuoteProvider(srv.URL, "")
	bars, err := p.FetchDailyBars(context.Background(), "MCX", 120)
	require.NoError(t, err)
	require.Len(t, bars, 1, "quote provider must return exactly one bar")

	bar := bars[0]
	assert.Equal(t, 100.0, bar.Open, "open must be the previous close")
	assert.InDelta(t, 105*1.01, bar.High, 1e-9)
	assert.InDelta(t, 100*0.99, bar.Low, 1e-9)
	assert.Equal(t, 105.0, bar.Close)
	assert.Equal(t, 750000.0, bar.Volume)
	assert.True(t, bar.Low <= bar.Open && bar.Open <= bar.High, "synthetic bar must stay well-formed")
}

func TestNSEQuote_DownDayBand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"priceInfo":{"lastPrice":95,"previousClose":100,"totalTradedVolume":1}}`))
	}))
	defer srv.Close()

	p := NewNSEQuoteProvider(srv.URL, "")
	bars, err := p.FetchDailyBars(context.Background(), "TCS", 120)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.InDelta(t, 100*1.01, bars[0].High, 1e-9)
	assert.InDelta(t, 95*0.99, bars[0].Low, 1e-9)
}

func TestNSEQuote_RejectsEmptyQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"priceInfo":{"lastPrice":0,"previousClose":0,"totalTradedVolume":0}}`))
	}))
	defer srv.Close()

	p := NewNSEQuoteProvider(srv.URL, "")
	_, err := p.FetchDailyBars(context.Background(), "TCS", 120)
	assert.Error(t, err)
}

func TestNSEQuote_IndexTwoBars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"lastPrice":48250.5,"previousClose":48000}]}`))
	}))
	defer srv.Close()

	p := NewNSEQuoteProvider(srv.URL, "")
	bars, err := p.FetchIndexBars(context.Background(), "^NSEBANK", 7)
	require.NoError(t, err)
	require.Len(t, bars, 2)
	assert.Equal(t, 48000.0, bars[0].Close)
	assert.Equal(t, 48250.5, bars[1].Close)
	assert.True(t, bars[0].Time.Before(bars[1].Time))
}

// Provider fallback scenario from end to end: the historical provider throws
// on every attempt and the quote provider answers, yielding the one-bar
// degraded series with the 1% band.
func TestCascade_DegradedQuoteFallback(t *testing.T) {
	quoteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"priceInfo":{"lastPrice":880,"previousClose":860,"totalTradedVolume":120000}}`))
	}))
	defer quoteSrv.Close()

	primary := &MockProvider{ProviderName: "nse-historical", Err: errors.New("blocked")}
	quote := NewNSEQuoteProvider(quoteSrv.URL, "")
	ds := NewDataSource([]Provider{primary, quote}, Options{
		AttemptTimeout: time.Second,
		MaxRetries:     2,
		RetryBackoff:   time.Millisecond,
	}, zerolog.Nop())

	bars := ds.FetchSeries(context.Background(), "NATCOPHARM")
	require.Len(t, bars, 1)
	assert.Equal(t, 860.0, bars[0].Open)
	assert.InDelta(t, 880*1.01, bars[0].High, 1e-9)
	assert.InDelta(t, 860*0.99, bars[0].Low, 1e-9)
	assert.Equal(t, 880.0, bars[0].Close)
}
