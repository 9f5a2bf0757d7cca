package collector

import (
	"context"

	"StockRadar/internal/model"
)

// Provider fetches daily bars from one upstream market-data source.
// Symbol normalization is provider-specific and happens inside each
// implementation, never in the caller.
type Provider interface {
	// FetchDailyBars returns up to `days` daily bars for an equity symbol.
	// A provider that only exposes a quote endpoint may return a single
	// synthetic bar; an empty result means the provider had nothing.
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error)

	// FetchIndexBars returns the latest daily bars for an index identifier.
	// At least two bars are needed downstream to derive a one-day change.
	FetchIndexBars(ctx context.Context, indexID string, days int) ([]model.OHLCV, error)

	Name() string
}
