package calculator

import "errors"

// EMASeries computes the exponential moving average of values with smoothing
// factor 2/(period+1). The series is seeded with the first value, so every
// position holds a defined average (no SMA warm-up).
func EMASeries(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.New("period must be positive")
	}
	if len(values) == 0 {
		return nil, errors.New("no values provided")
	}
	alpha := 2.0 / (float64(period) + 1.0)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = out[i-1] + alpha*(values[i]-out[i-1])
	}
	return out, nil
}

// EMA returns the latest exponential moving average of values.
func EMA(values []float64, period int) (float64, error) {
	series, err := EMASeries(values, period)
	if err != nil {
		return 0, err
	}
	return series[len(series)-1], nil
}
