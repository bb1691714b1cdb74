package demand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault_FitsHistory(t *testing.T) {
	f, err := NewDefault()
	require.NoError(t, err)
	require.True(t, f.Trained())

	// mean hour 14, mean demand 105, Sxx 100, Sxy 740
	intercept, slope := f.Coefficients()
	assert.InDelta(t, 7.4, slope, 1e-9)
	assert.InDelta(t, 1.4, intercept, 1e-9)

	tests := []struct {
		hour float64
		want float64
	}{
		{0, 1.4},
		{9, 68.0},
		{19, 142.0},
		{23, 171.6},
		{-10, -72.6},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, f.Predict(tt.hour), 1e-9, "hour %v", tt.hour)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	a, b := &Forecaster{}, &Forecaster{}
	require.NoError(t, a.Train(DefaultHistory()))
	require.NoError(t, b.Train(DefaultHistory()))
	assert.Equal(t, a.Predict(13.5), b.Predict(13.5))
}

func TestTrain_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		samples []Sample
	}{
		{"empty", nil},
		{"single", []Sample{{Hour: 9, Demand: 50}}},
		{"same hour", []Sample{{Hour: 9, Demand: 50}, {Hour: 9, Demand: 70}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Forecaster{}
			assert.ErrorIs(t, f.Train(tt.samples), ErrInsufficientData)
			assert.False(t, f.Trained())
		})
	}
}

func TestTrain_ExactLine(t *testing.T) {
	f := &Forecaster{}
	require.NoError(t, f.Train([]Sample{{0, 10}, {1, 12}, {2, 14}}))
	assert.InDelta(t, 30, f.Predict(10), 1e-9)
}
