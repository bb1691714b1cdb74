// README: Weather severity codes as carried on trip requests.
package types

// Weather is the coded weather severity. The numbering matches the encoding
// the fare model was trained with, so it must not be reordered.
type Weather int

const (
	WeatherClear Weather = 0
	WeatherRainy Weather = 1
	WeatherSnowy Weather = 2
	WeatherFoggy Weather = 3
)

func (w Weather) Known() bool {
	return w >= WeatherClear && w <= WeatherFoggy
}

func (w Weather) String() string {
	switch w {
	case WeatherClear:
		return "Clear"
	case WeatherRainy:
		return "Rainy"
	case WeatherSnowy:
		return "Snowy"
	case WeatherFoggy:
		return "Foggy"
	default:
		return "Unknown"
	}
}
