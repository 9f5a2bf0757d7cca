package model

import "time"

// OHLCV represents a single daily candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Trend is the direction tag attached to an index snapshot.
type Trend string

const (
	TrendUp      Trend = "▲"
	TrendDown    Trend = "▼"
	TrendUnknown Trend = "—"
)

// IndexSnapshot summarises the latest state of a market index.
// Price is nil when every provider failed; Trend is then TrendUnknown.
type IndexSnapshot struct {
	Price     *float64
	ChangePct *float64
	Trend     Trend
}

// Headline is a single news item attached to a ticker.
type Headline struct {
	Title     string
	URL       string
	Published string
}
