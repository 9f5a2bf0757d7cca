package calculator

import "errors"

// VolumeRatio returns the latest volume divided by the mean of the trailing
// window (the latest bar included). Returns nil when the average is zero.
func VolumeRatio(volumes []float64, window int) (*float64, error) {
	if window <= 0 {
		return nil, errors.New("window must be positive")
	}
	if len(volumes) == 0 {
		return nil, errors.New("no volumes provided")
	}
	start := len(volumes) - window
	if start < 0 {
		start = 0
	}
	sum := 0.0
	for i := start; i < len(volumes); i++ {
		sum += volumes[i]
	}
	avg := sum / float64(len(volumes)-start)
	if avg == 0 {
		return nil, nil
	}
	ratio := volumes[len(volumes)-1] / avg
	return &ratio, nil
}
