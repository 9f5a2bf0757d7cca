package calculator

import "errors"

// RSI computes the Wilder-smoothed relative strength index over the given
// period: per-bar gains and losses are averaged with alpha = 1/period.
// Returns nil when the average loss is zero — the index is undefined there
// and must never be forced to 100 via a division by zero.
func RSI(closes []float64, period int) (*float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(closes) < 2 {
		return nil, errors.New("not enough data for RSI calculation")
	}

	alpha := 1.0 / float64(period)
	var avgGain, avgLoss float64
	for i := 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		if i == 1 {
			avgGain, avgLoss = gain, loss
			continue
		}
		avgGain += alpha * (gain - avgGain)
		avgLoss += alpha * (loss - avgLoss)
	}

	if avgLoss == 0 {
		return nil, nil
	}
	rs := avgGain / avgLoss
	rsi := 100.0 - 100.0/(1.0+rs)
	return &rsi, nil
}
