package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"StockRadar/internal/metrics"
	"StockRadar/internal/model"
)

// Options control the fallback cascade.
type Options struct {
	LookbackDays   int
	AttemptTimeout time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
}

func (o Options) withDefaults() Options {
	if o.LookbackDays <= 0 {
		o.LookbackDays = 120
	}
	if o.AttemptTimeout <= 0 {
		o.AttemptTimeout = 10 * time.Second
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	return o
}

// DataSource queries providers in priority order and normalizes whatever the
// first successful one returns. It holds no cross-call state and never caches.
type DataSource struct {
	providers []Provider
	opts      Options
	log       zerolog.Logger
}

// NewDataSource builds a source over an ordered provider list. The first
// provider is primary; the rest are fallbacks.
func NewDataSource(providers []Provider, opts Options, log zerolog.Logger) *DataSource {
	return &DataSource{
		providers: providers,
		opts:      opts.withDefaults(),
		log:       log.With().Str("component", "collector").Logger(),
	}
}

// FetchSeries returns up to LookbackDays of daily bars for ticker, sorted
// ascending with duplicate dates removed. On total provider exhaustion it
// returns an empty series; it never returns an error to the caller.
func (d *DataSource) FetchSeries(ctx context.Context, ticker string) []model.OHLCV {
	bars := d.cascade(ctx, ticker, func(ctx context.Context, p Provider) ([]model.OHLCV, error) {
		return p.FetchDailyBars(ctx, ticker, d.opts.LookbackDays)
	}, 1)
	return normalize(bars)
}

// FetchIndexSnapshot derives the latest price and one-day change for an
// index. A provider answering with fewer than two usable bars counts as a
// failure and the next provider is tried.
func (d *DataSource) FetchIndexSnapshot(ctx context.Context, indexID string) model.IndexSnapshot {
	bars := d.cascade(ctx, indexID, func(ctx context.Context, p Provider) ([]model.OHLCV, error) {
		return p.FetchIndexBars(ctx, indexID, 7)
	}, 2)
	bars = normalize(bars)
	if len(bars) < 2 {
		return model.IndexSnapshot{Trend: model.TrendUnknown}
	}

	last := bars[len(bars)-1].Close
	prev := bars[len(bars)-2].Close
	if prev <= 0 {
		return model.IndexSnapshot{Trend: model.TrendUnknown}
	}
	change := (last - prev) / prev * 100
	trend := model.TrendUp
	if change < 0 {
		trend = model.TrendDown
	}
	return model.IndexSnapshot{Price: &last, ChangePct: &change, Trend: trend}
}

// cascade walks the provider list, giving each provider MaxRetries+1
// time-bounded attempts with a short backoff in between. It stops at the
// first provider that returns at least minBars bars.
func (d *DataSource) cascade(ctx context.Context, subject string,
	call func(context.Context, Provider) ([]model.OHLCV, error), minBars int) []model.OHLCV {

	for _, p := range d.providers {
		for attempt := 0; attempt <= d.opts.MaxRetries; attempt++ {
			bars, err := d.attempt(ctx, p, call)

			if err == nil && len(bars) >= minBars {
				d.log.Debug().
					Str("provider", p.Name()).
					Str("subject", subject).
					Int("bars", len(bars)).
					Msg("fetch succeeded")
				return bars
			}

			metrics.ProviderFailures.WithLabelValues(p.Name()).Inc()
			evt := d.log.Warn().
				Str("provider", p.Name()).
				Str("subject", subject).
				Int("attempt", attempt+1)
			if err != nil {
				evt.Err(err).Msg("provider attempt failed")
			} else {
				evt.Int("bars", len(bars)).Msg("provider returned too little data")
			}

			if ctx.Err() != nil {
				return nil
			}
			if attempt < d.opts.MaxRetries {
				select {
				case <-ctx.Done():
					return nil
				case <-time.After(d.opts.RetryBackoff):
				}
			}
		}
	}
	d.log.Error().Str("subject", subject).Msg("all providers exhausted")
	return nil
}

// attempt runs one time-bounded provider call. A panic inside the provider
// counts as a failed attempt, so a malformed response cannot kill the batch.
func (d *DataSource) attempt(ctx context.Context, p Provider,
	call func(context.Context, Provider) ([]model.OHLCV, error)) (bars []model.OHLCV, err error) {

	attemptCtx, cancel := context.WithTimeout(ctx, d.opts.AttemptTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			bars, err = nil, fmt.Errorf("provider panic: %v", r)
		}
	}()
	return call(attemptCtx, p)
}

// normalize sorts bars ascending by date and collapses duplicate dates,
// keeping the later entry. Providers already sort their own output, so the
// common case is a no-op pass.
func normalize(bars []model.OHLCV) []model.OHLCV {
	if len(bars) == 0 {
		return nil
	}
	out := make([]model.OHLCV, len(bars))
	copy(out, bars)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Time.Before(out[j-1].Time); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	dedup := out[:1]
	for _, b := range out[1:] {
		lastDate := dedup[len(dedup)-1].Time
		if sameDay(lastDate, b.Time) {
			dedup[len(dedup)-1] = b
			continue
		}
		dedup = append(dedup, b)
	}
	return dedup
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
