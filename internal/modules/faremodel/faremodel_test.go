package faremodel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatures_Derived(t *testing.T) {
	f := Features(Input{
		DistanceKm:      4,
		Hour:            23,
		TrafficLevel:    3,
		RideDemandLevel: 2,
		WeatherSeverity: 1,
		TrafficBlocks:   4,
		Holiday:         true,
		EventNearby:     true,
	})
	assert.Equal(t, 12.0, f["traffic_impact"])
	assert.Equal(t, 16.0, f["distance_squared"])
	assert.InDelta(t, math.Log(5), f["log_distance"], 1e-12)
	assert.Equal(t, 2.0, f["special_conditions"])
	assert.Equal(t, 0.0, f["is_peak_hour"])
	assert.Equal(t, 1.0, f["is_night"])
	assert.Equal(t, 23.0, f["hour_of_day"])
}

func TestPeakAndNightWindows(t *testing.T) {
	for h := 0; h < 24; h++ {
		wantPeak := h == 7 || h == 8 || h == 9 || h == 17 || h == 18 || h == 19
		wantNight := h >= 22 || h <= 5
		assert.Equal(t, wantPeak, IsPeakHour(h), "peak hour %d", h)
		assert.Equal(t, wantNight, IsNight(h), "night hour %d", h)
	}
}

func TestBuildRow_OrderAndDefaults(t *testing.T) {
	row := BuildRow(map[string]float64{
		"special_conditions": 1,
		"distance_km":        2.5,
		"not_a_feature":      99,
	})
	require.Len(t, row, len(FeatureNames))
	assert.Equal(t, 2.5, row[0])
	assert.Equal(t, 1.0, row[10])
	for i := 1; i < 10; i++ {
		assert.Zero(t, row[i], "column %s", FeatureNames[i])
	}
}

func TestLinearModel(t *testing.T) {
	m, err := Open("testdata/linear.json")
	require.NoError(t, err)
	assert.Equal(t, "test-linear", m.Version())

	got, err := m.PredictFare(Input{
		DistanceKm:      5,
		Hour:            8,
		TrafficLevel:    2,
		RideDemandLevel: 3,
		WeatherSeverity: 1,
		TrafficBlocks:   2,
		Holiday:         true,
	})
	require.NoError(t, err)
	// 20 + 10*5 + 1*2 + 2*3 + 0.5*4 + 3*1 + 5*peak + 7*special
	assert.InDelta(t, 95.0, got, 1e-9)
}

func TestForestModel(t *testing.T) {
	m, err := Open("testdata/forest.json")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   Input
		want float64
	}{
		{"short plain trip", Input{DistanceKm: 3}, 70},
		{"long holiday snow", Input{DistanceKm: 8, Holiday: true, WeatherSeverity: 2}, 130},
		{"long event rain", Input{DistanceKm: 8, EventNearby: true, WeatherSeverity: 1}, 110},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := m.PredictFare(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPredict_RowWidth(t *testing.T) {
	m, err := Open("testdata/linear.json")
	require.NoError(t, err)
	_, err = m.Predict([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestPredict_NonFinite(t *testing.T) {
	m, err := Open("testdata/linear.json")
	require.NoError(t, err)
	_, err = m.PredictFare(Input{DistanceKm: math.Inf(1)})
	assert.ErrorIs(t, err, ErrNonFinite)
}

func TestOpen_Failures(t *testing.T) {
	_, err := Open("testdata/missing.json")
	assert.Error(t, err)

	_, err = Open("testdata/wrong_contract.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFeatureContract)
}

func TestValidate(t *testing.T) {
	good := func() *Artifact {
		return &Artifact{
			FeatureVersion: FeatureVersion,
			Kind:           KindLinear,
			Features:       append([]string(nil), FeatureNames...),
			Linear:         &Linear{Coefficients: make([]float64, len(FeatureNames))},
		}
	}
	require.NoError(t, good().Validate())

	tests := []struct {
		name   string
		mutate func(a *Artifact)
	}{
		{"reordered features", func(a *Artifact) { a.Features[0], a.Features[1] = a.Features[1], a.Features[0] }},
		{"short coefficients", func(a *Artifact) { a.Linear.Coefficients = a.Linear.Coefficients[:3] }},
		{"unknown kind", func(a *Artifact) { a.Kind = "boosted" }},
		{"forest without trees", func(a *Artifact) { a.Kind = KindForest }},
		{"bad scaler", func(a *Artifact) { a.Scaler = &Scaler{Mean: []float64{1}} }},
		{"cyclic tree", func(a *Artifact) {
			a.Kind = KindForest
			a.Forest = &Forest{Trees: []Tree{{
				ChildrenLeft:  []int{0},
				ChildrenRight: []int{0},
				Feature:       []int{0},
				Threshold:     []float64{0},
				Value:         []float64{1},
			}}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := good()
			tt.mutate(a)
			assert.Error(t, a.Validate())
			_, err := New(a)
			assert.Error(t, err)
		})
	}
}
