package strategy

import (
	"fmt"

	"github.com/rs/zerolog"

	"StockRadar/internal/calculator"
	"StockRadar/internal/config"
	"StockRadar/internal/model"
)

// Engine derives a StockSignal from a daily bar series. It holds no
// cross-call state: Analyse is a pure function of its inputs, so the same
// series always yields the same signal.
type Engine struct {
	levels map[string]model.TradeLevels
	cfg    config.Signals
	log    zerolog.Logger
}

// NewEngine creates an engine with an injected read-only trade-level table.
func NewEngine(levels map[string]model.TradeLevels, cfg config.Signals, log zerolog.Logger) *Engine {
	return &Engine{
		levels: levels,
		cfg:    cfg,
		log:    log.With().Str("component", "strategy").Logger(),
	}
}

// Analyse computes indicators and the composite recommendation for ticker.
// It never returns an error: computation failures are recorded on the signal
// so a batch over many tickers always runs to completion.
func (e *Engine) Analyse(ticker string, bars []model.OHLCV) *model.StockSignal {
	sig := &model.StockSignal{
		Ticker:  ticker,
		Overall: model.SignalNeutral,
	}
	sig.Levels = e.lookupLevels(ticker)
	sig.Pattern = sig.Levels.Pattern

	switch {
	case len(bars) == 0:
		sig.Error = "Insufficient data"
		sig.Overall = model.SignalNoData
		return sig

	case len(bars) == 1:
		// Quote-only degraded mode: a single synthetic bar whose open is the
		// previous close. No indicators are computable.
		bar := bars[0]
		price := bar.Close
		sig.CurrentPrice = &price
		if bar.Open > 0 {
			change := (bar.Close - bar.Open) / bar.Open * 100
			sig.ChangePct = &change
		}
		sig.Overall = changeHeuristic(sig.ChangePct)
		return sig

	case len(bars) < e.cfg.MinBars:
		price := bars[len(bars)-1].Close
		prev := bars[len(bars)-2].Close
		sig.CurrentPrice = &price
		if prev > 0 {
			change := (price - prev) / prev * 100
			sig.ChangePct = &change
		}
		sig.Overall = changeHeuristic(sig.ChangePct)
		sig.Notes = append(sig.Notes, "Limited data — price action only")
		return sig
	}

	if err := e.fullAnalysis(sig, bars); err != nil {
		e.log.Warn().Err(err).Str("ticker", ticker).Msg("analysis failed")
		return e.failedSignal(ticker, err)
	}
	return sig
}

// failedSignal builds the well-formed error result: indicators at their
// defaults, error recorded, NO DATA recommendation.
func (e *Engine) failedSignal(ticker string, err error) *model.StockSignal {
	sig := &model.StockSignal{
		Ticker:  ticker,
		Overall: model.SignalNoData,
		Error:   err.Error(),
	}
	sig.Levels = e.lookupLevels(ticker)
	sig.Pattern = sig.Levels.Pattern
	return sig
}

func (e *Engine) lookupLevels(ticker string) model.TradeLevels {
	lvl, ok := e.levels[ticker]
	if !ok {
		return model.PlaceholderLevels()
	}
	return fillPlaceholders(lvl)
}

// fillPlaceholders substitutes the display sentinel for any field the
// analyst left blank in the table.
func fillPlaceholders(lvl model.TradeLevels) model.TradeLevels {
	fields := []*string{&lvl.Entry, &lvl.StopLoss, &lvl.STTarget, &lvl.MTTarget, &lvl.RiskReward, &lvl.Pattern}
	for _, f := range fields {
		if *f == "" {
			*f = model.Placeholder
		}
	}
	return lvl
}

// fullAnalysis runs the complete indicator suite on series of >= MinBars bars.
// A panic anywhere in the arithmetic is converted into an error.
func (e *Engine) fullAnalysis(sig *model.StockSignal, bars []model.OHLCV) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analysis panic: %v", r)
		}
	}()

	closes := make([]float64, len(bars))
	volumes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
		volumes[i] = b.Volume
	}

	price := closes[len(closes)-1]
	prev := closes[len(closes)-2]
	sig.CurrentPrice = &price
	if prev > 0 {
		change := (price - prev) / prev * 100
		sig.ChangePct = &change
	}

	rsi, err := calculator.RSI(closes, e.cfg.RSIPeriod)
	if err != nil {
		return fmt.Errorf("rsi: %w", err)
	}
	sig.RSI = rsi

	macdLine, signalLine, err := calculator.MACD(closes, e.cfg.MACDFast, e.cfg.MACDSlow, e.cfg.MACDSignal)
	if err != nil {
		return fmt.Errorf("macd: %w", err)
	}
	sig.MACDBullish = macdLine > signalLine

	emaShort, err := calculator.EMA(closes, e.cfg.EMAShort)
	if err != nil {
		return fmt.Errorf("ema%d: %w", e.cfg.EMAShort, err)
	}
	emaLong, err := calculator.EMA(closes, e.cfg.EMALong)
	if err != nil {
		return fmt.Errorf("ema%d: %w", e.cfg.EMALong, err)
	}
	sig.AboveEMAShort = price > emaShort
	sig.AboveEMALong = price > emaLong

	ratio, err := calculator.VolumeRatio(volumes, e.cfg.VolumeWindow)
	if err != nil {
		return fmt.Errorf("volume ratio: %w", err)
	}
	sig.VolumeRatio = ratio
	sig.VolumeSpike = ratio != nil && *ratio >= e.cfg.VolumeSpikeMultiplier

	sig.Overall = e.compositeSignal(sig)
	sig.Notes = e.buildNotes(sig)
	return nil
}

// compositeSignal tallies bullish votes across the indicator suite.
func (e *Engine) compositeSignal(sig *model.StockSignal) model.OverallSignal {
	votes := 0
	if sig.MACDBullish {
		votes++
	}
	if sig.AboveEMAShort {
		votes++
	}
	if sig.AboveEMALong {
		votes++
	}
	if sig.VolumeSpike {
		votes++
	}
	if sig.RSI != nil && *sig.RSI >= e.cfg.RSIBullishZone && *sig.RSI < e.cfg.RSIOverbought {
		votes++
	}

	switch {
	case votes >= 4:
		return model.SignalStrongBuy
	case votes == 3:
		return model.SignalBuy
	case votes == 2:
		return model.SignalWatch
	case votes == 1:
		return model.SignalNeutral
	default:
		return model.SignalCaution
	}
}

// buildNotes assembles the advisory notes in a fixed order so report output
// is deterministic: oversold, overbought, volume spike, EMA reclaim.
func (e *Engine) buildNotes(sig *model.StockSignal) []string {
	var notes []string
	if sig.RSI != nil && *sig.RSI < e.cfg.RSIOversold {
		notes = append(notes, "RSI oversold — potential bounce zone")
	}
	if sig.RSI != nil && *sig.RSI > e.cfg.RSIOverbought {
		notes = append(notes, "RSI overbought — partial profit booking advisable")
	}
	if sig.VolumeSpike && sig.VolumeRatio != nil {
		notes = append(notes, fmt.Sprintf("Volume spike %.2f× avg — institutional activity", *sig.VolumeRatio))
	}
	if sig.AboveEMAShort && !sig.AboveEMALong {
		notes = append(notes, fmt.Sprintf("%d EMA reclaim attempt — key resistance", e.cfg.EMALong))
	}
	return notes
}

// changeHeuristic maps a one-day price change onto the recommendation scale
// for series too short for the indicator suite.
func changeHeuristic(changePct *float64) model.OverallSignal {
	if changePct == nil {
		return model.SignalNeutral
	}
	switch {
	case *changePct > 2:
		return model.SignalWatch
	case *changePct < -2:
		return model.SignalCaution
	default:
		return model.SignalNeutral
	}
}
