// Package news pulls recent per-ticker headlines from Google News RSS.
package news

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"StockRadar/internal/model"
)

var gnewsRedirect = regexp.MustCompile(`url=(https?://[^&]+)`)

// Fetcher retrieves headlines. Failures never propagate: a ticker with no
// reachable feed simply gets an empty list.
type Fetcher struct {
	parser      *gofeed.Parser
	feedURL     string // fmt template with one %s for the query
	maxPerStock int
	maxAge      time.Duration
	log         zerolog.Logger
}

func NewFetcher(feedURL string, maxPerStock int, log zerolog.Logger) *Fetcher {
	if maxPerStock <= 0 {
		maxPerStock = 2
	}
	return &Fetcher{
		parser:      gofeed.NewParser(),
		feedURL:     feedURL,
		maxPerStock: maxPerStock,
		maxAge:      48 * time.Hour,
		log:         log.With().Str("component", "news").Logger(),
	}
}

// Headlines returns up to maxPerStock recent items per ticker.
func (f *Fetcher) Headlines(ctx context.Context, tickers []string) map[string][]model.Headline {
	results := make(map[string][]model.Headline, len(tickers))
	for _, ticker := range tickers {
		items, err := f.fetchForTicker(ctx, ticker)
		if err != nil {
			f.log.Warn().Err(err).Str("ticker", ticker).Msg("headline fetch failed")
			results[ticker] = nil
			continue
		}
		results[ticker] = items
	}
	return results
}

func (f *Fetcher) fetchForTicker(ctx context.Context, ticker string) ([]model.Headline, error) {
	feedURL := fmt.Sprintf(f.feedURL, url.QueryEscape(ticker))
	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	cutoff := time.Now().Add(-f.maxAge)
	var items []model.Headline
	for i, entry := range feed.Items {
		if i >= 15 { // scan the head of the feed only
			break
		}
		if !strings.Contains(strings.ToLower(entry.Title), strings.ToLower(ticker)) {
			continue
		}
		if entry.PublishedParsed != nil && entry.PublishedParsed.Before(cutoff) {
			continue
		}
		items = append(items, model.Headline{
			Title:     entry.Title,
			URL:       cleanRedirect(entry.Link),
			Published: entry.Published,
		})
		if len(items) >= f.maxPerStock {
			break
		}
	}
	return items, nil
}

// cleanRedirect strips the Google News redirect wrapper if present.
func cleanRedirect(link string) string {
	if m := gnewsRedirect.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return link
}
