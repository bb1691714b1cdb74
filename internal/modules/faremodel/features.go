// README: Feature contract shared with the fare-model training pipeline.
package faremodel

import "math"

// FeatureVersion identifies the feature layout below. Artifacts carry the
// version they were trained against and are rejected on mismatch.
const FeatureVersion = "fare-features/v1"

// FeatureNames is the column order the model was trained on. Order matters.
var FeatureNames = []string{
	"distance_km",
	"traffic_level",
	"ride_demand_level",
	"traffic_impact",
	"weather_severity",
	"hour_of_day",
	"is_peak_hour",
	"is_night",
	"distance_squared",
	"log_distance",
	"special_conditions",
}

// Input is the raw trip context the features are derived from.
type Input struct {
	DistanceKm      float64
	Hour            int
	TrafficLevel    int
	RideDemandLevel int
	WeatherSeverity int
	TrafficBlocks   int
	Holiday         bool
	EventNearby     bool
}

// IsPeakHour reports the model's notion of peak (7-9, 17-19). This is not the
// same window the pricing formula uses.
func IsPeakHour(hour int) bool {
	switch hour {
	case 7, 8, 9, 17, 18, 19:
		return true
	}
	return false
}

// IsNight reports 22:00-05:59.
func IsNight(hour int) bool {
	return hour >= 22 || (hour >= 0 && hour <= 5)
}

// Features derives the named feature set from in.
func Features(in Input) map[string]float64 {
	special := 0.0
	if in.Holiday {
		special++
	}
	if in.EventNearby {
		special++
	}
	return map[string]float64{
		"distance_km":        in.DistanceKm,
		"traffic_level":      float64(in.TrafficLevel),
		"ride_demand_level":  float64(in.RideDemandLevel),
		"traffic_impact":     float64(in.TrafficLevel * in.TrafficBlocks),
		"weather_severity":   float64(in.WeatherSeverity),
		"hour_of_day":        float64(in.Hour),
		"is_peak_hour":       boolFloat(IsPeakHour(in.Hour)),
		"is_night":           boolFloat(IsNight(in.Hour)),
		"distance_squared":   in.DistanceKm * in.DistanceKm,
		"log_distance":       math.Log1p(in.DistanceKm),
		"special_conditions": special,
	}
}

// BuildRow orders features into the contract layout. Missing features are 0.
func BuildRow(features map[string]float64) []float64 {
	row := make([]float64, len(FeatureNames))
	for i, name := range FeatureNames {
		row[i] = features[name]
	}
	return row
}

func boolFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
