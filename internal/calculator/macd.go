package calculator

import "errors"

// MACD computes the moving average convergence/divergence at the latest bar:
// macdLine = EMA(fast) - EMA(slow), signalLine = EMA(macdLine, signal).
func MACD(closes []float64, fast, slow, signal int) (macdLine, signalLine float64, err error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return 0, 0, errors.New("periods must be positive")
	}
	if fast >= slow {
		return 0, 0, errors.New("fast period must be smaller than slow period")
	}
	fastEMA, err := EMASeries(closes, fast)
	if err != nil {
		return 0, 0, err
	}
	slowEMA, err := EMASeries(closes, slow)
	if err != nil {
		return 0, 0, err
	}

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}
	signalSeries, err := EMASeries(line, signal)
	if err != nil {
		return 0, 0, err
	}
	return line[len(line)-1], signalSeries[len(signalSeries)-1], nil
}
