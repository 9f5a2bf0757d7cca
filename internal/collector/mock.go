package collector

import (
	"context"
	"time"

	"StockRadar/internal/model"
)

// MockProvider returns controllable fixed data for development and testing.
type MockProvider struct {
	ProviderName string
	DailyBars    []model.OHLCV
	IndexBars    []model.OHLCV
	Err          error
	Calls        int
}

func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

func (m *MockProvider) FetchDailyBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.DailyBars != nil {
		return m.DailyBars, nil
	}
	return GenerateBars(1000, days), nil
}

func (m *MockProvider) FetchIndexBars(_ context.Context, _ string, days int) ([]model.OHLCV, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.IndexBars != nil {
		return m.IndexBars, nil
	}
	return GenerateBars(24000, days), nil
}

// GenerateBars produces a gently drifting series around basePrice.
func GenerateBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   time.Now().AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
