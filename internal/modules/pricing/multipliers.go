// README: Situational multipliers: time of day, zone, traffic and weather.
package pricing

import (
	"fleetfare/internal/config"
	"fleetfare/internal/types"
)

var zoneMultipliers = map[types.Zone]float64{
	types.ZoneAirport:  1.12,
	types.ZoneDowntown: 1.08,
	types.ZoneSuburb:   0.95,
}

var weatherMultipliers = map[types.Weather]float64{
	types.WeatherClear: 1.0,
	types.WeatherRainy: 1.08,
	types.WeatherFoggy: 1.12,
	types.WeatherSnowy: 1.15,
}

// IsPeak reports the pricing peak windows, 08-10 and 16-19 inclusive.
func IsPeak(hour int) bool {
	return (hour >= 8 && hour <= 10) || (hour >= 16 && hour <= 19)
}

// IsNight reports 23:00-05:59.
func IsNight(hour int) bool {
	return hour >= 23 || hour <= 5
}

// TimeMultiplier applies to the rule fare. Night takes precedence over peak.
func TimeMultiplier(cfg config.PricingConfig, hour int) float64 {
	switch {
	case IsNight(hour):
		return cfg.NightRateMultiplier
	case IsPeak(hour):
		return cfg.PeakRateMultiplier
	default:
		return 1.0
	}
}

// DemandWeight scales forecast demand by time of day.
func DemandWeight(hour int) float64 {
	switch {
	case IsPeak(hour):
		return 1.2
	case hour >= 23 || hour <= 4:
		return 1.1
	default:
		return 1.0
	}
}

func ZoneMultiplier(z types.Zone) float64 {
	if m, ok := zoneMultipliers[z]; ok {
		return m
	}
	return 1.0
}

func WeatherMultiplier(w types.Weather) float64 {
	if m, ok := weatherMultipliers[w]; ok {
		return m
	}
	return 1.0
}

// TrafficMultiplier grows linearly to 1.2 at five blocked segments.
func TrafficMultiplier(blocks int) float64 {
	b := float64(blocks) / 5
	if b < 0 {
		b = 0
	}
	if b > 1 {
		b = 1
	}
	return 1 + 0.2*b
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
