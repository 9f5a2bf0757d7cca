package scheduler

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockRadar/internal/collector"
	"StockRadar/internal/config"
	"StockRadar/internal/health"
	"StockRadar/internal/model"
	"StockRadar/internal/strategy"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Watchlist = []string{"RELIANCE", "TCS", "INFY"}
	cfg.Schedule.DailyCron = "0 30 3 * * 1-5"
	cfg.Signals = config.Signals{
		RSIPeriod: 14, RSIOversold: 40, RSIBullishZone: 50, RSIOverbought: 70,
		EMAShort: 20, EMALong: 50,
		MACDFast: 12, MACDSlow: 26, MACDSignal: 9,
		VolumeWindow: 20, VolumeSpikeMultiplier: 1.5, MinBars: 30,
	}
	return cfg
}

func newTestScheduler(t *testing.T, provider collector.Provider) *Scheduler {
	t.Helper()
	cfg := testConfig()
	data := collector.NewDataSource([]collector.Provider{provider}, collector.Options{
		LookbackDays: 120, MaxRetries: 0,
	}, zerolog.Nop())
	engine := strategy.NewEngine(config.DefaultTradeLevels(), cfg.Signals, zerolog.Nop())
	return NewScheduler(context.Background(), cfg, data, engine, nil, nil,
		health.NewNoopRecorder(), zerolog.Nop())
}

func TestRegisterAll_ValidCron(t *testing.T) {
	s := newTestScheduler(t, &collector.MockProvider{DailyBars: collector.GenerateBars(100, 120)})
	require.NoError(t, s.RegisterAll())
}

func TestRegisterAll_BadCron(t *testing.T) {
	s := newTestScheduler(t, &collector.MockProvider{})
	s.Cfg.Schedule.DailyCron = "not a cron spec"
	assert.Error(t, s.RegisterAll())
}

func TestCollectSignals_PreservesWatchlistOrder(t *testing.T) {
	s := newTestScheduler(t, &collector.MockProvider{DailyBars: collector.GenerateBars(100, 120)})

	signals := s.collectSignals(context.Background(), s.Cfg.Watchlist)
	require.Len(t, signals, 3)
	assert.Equal(t, "RELIANCE", signals[0].Ticker)
	assert.Equal(t, "TCS", signals[1].Ticker)
	assert.Equal(t, "INFY", signals[2].Ticker)
	for _, sig := range signals {
		assert.NotEqual(t, model.SignalNoData, sig.Overall)
	}
}

func TestCollectSignals_FailedFetchBecomesNoData(t *testing.T) {
	s := newTestScheduler(t, &collector.MockProvider{Err: assert.AnError})

	signals := s.collectSignals(context.Background(), []string{"RELIANCE"})
	require.Len(t, signals, 1)
	assert.Equal(t, model.SignalNoData, signals[0].Overall)
	assert.NotEmpty(t, signals[0].Error)
}

func TestHandleCommand_Signal(t *testing.T) {
	s := newTestScheduler(t, &collector.MockProvider{DailyBars: collector.GenerateBars(500, 120)})

	reply := s.HandleCommand(context.Background(), "/signal", []string{"reliance"})
	assert.Contains(t, reply, "RELIANCE")
	assert.Contains(t, reply, "CMP")
}

func TestHandleCommand_SignalWithoutTicker(t *testing.T) {
	s := newTestScheduler(t, &collector.MockProvider{})
	reply := s.HandleCommand(context.Background(), "/signal", nil)
	assert.Contains(t, reply, "Usage")
}

func TestHandleCommand_Watchlist(t *testing.T) {
	s := newTestScheduler(t, &collector.MockProvider{})
	reply := s.HandleCommand(context.Background(), "/watchlist", nil)
	assert.Contains(t, reply, "RELIANCE")
	assert.Contains(t, reply, "TCS")
}

func TestHandleCommand_Status(t *testing.T) {
	s := newTestScheduler(t, &collector.MockProvider{})
	reply := s.HandleCommand(context.Background(), "/status", nil)
	assert.Contains(t, reply, "Never run")
}

func TestHandleCommand_Unknown(t *testing.T) {
	s := newTestScheduler(t, &collector.MockProvider{})
	reply := s.HandleCommand(context.Background(), "/frobnicate", nil)
	assert.Contains(t, reply, "/help")
}
