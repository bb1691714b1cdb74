// README: Demand forecaster; single-variable least squares over hour of day.
package demand

import (
	"math"

	"github.com/rotisserie/eris"
)

var ErrInsufficientData = eris.New("demand: need at least two samples with distinct hours")

// Sample is one historical observation.
type Sample struct {
	Hour   float64
	Demand float64
}

// Forecaster predicts expected ride demand for an hour of day. A trained
// Forecaster is read-only and safe for concurrent use.
type Forecaster struct {
	intercept float64
	slope     float64
	trained   bool
}

// DefaultHistory is the fixed sample the engine trains on at startup: a
// morning and an evening peak.
func DefaultHistory() []Sample {
	return []Sample{
		{Hour: 9, Demand: 50}, {Hour: 10, Demand: 80}, {Hour: 11, Demand: 100},
		{Hour: 17, Demand: 120}, {Hour: 18, Demand: 150}, {Hour: 19, Demand: 130},
	}
}

// NewDefault returns a Forecaster trained on DefaultHistory.
func NewDefault() (*Forecaster, error) {
	f := &Forecaster{}
	if err := f.Train(DefaultHistory()); err != nil {
		return nil, err
	}
	return f, nil
}

// Train fits demand = intercept + slope*hour by ordinary least squares.
func (f *Forecaster) Train(samples []Sample) error {
	if len(samples) < 2 {
		return ErrInsufficientData
	}
	n := float64(len(samples))
	var sumX, sumY float64
	for _, s := range samples {
		if math.IsNaN(s.Hour) || math.IsNaN(s.Demand) || math.IsInf(s.Hour, 0) || math.IsInf(s.Demand, 0) {
			return eris.Errorf("demand: non-finite sample %+v", s)
		}
		sumX += s.Hour
		sumY += s.Demand
	}
	meanX, meanY := sumX/n, sumY/n

	var sxx, sxy float64
	for _, s := range samples {
		dx := s.Hour - meanX
		sxx += dx * dx
		sxy += dx * (s.Demand - meanY)
	}
	if sxx == 0 {
		return ErrInsufficientData
	}

	f.slope = sxy / sxx
	f.intercept = meanY - f.slope*meanX
	f.trained = true
	return nil
}

// Predict extrapolates demand for hour. The result is unbounded and may be
// negative; callers guard the domain.
func (f *Forecaster) Predict(hour float64) float64 {
	return f.intercept + f.slope*hour
}

func (f *Forecaster) Trained() bool { return f.trained }

// Coefficients returns the fitted intercept and slope.
func (f *Forecaster) Coefficients() (intercept, slope float64) {
	return f.intercept, f.slope
}
