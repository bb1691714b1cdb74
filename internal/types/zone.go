// README: Service zones. The set is closed; anything else is ZoneUnknown.
package types

import "strings"

type Zone string

const (
	ZoneDowntown Zone = "downtown"
	ZoneSuburb   Zone = "suburb"
	ZoneAirport  Zone = "airport"
	ZoneUnknown  Zone = "unknown"
)

// Zones lists the known zones.
var Zones = []Zone{ZoneDowntown, ZoneSuburb, ZoneAirport}

// ParseZone maps a zone name to a Zone. Unrecognised names yield ZoneUnknown.
func ParseZone(s string) Zone {
	switch Zone(strings.ToLower(strings.TrimSpace(s))) {
	case ZoneDowntown:
		return ZoneDowntown
	case ZoneSuburb:
		return ZoneSuburb
	case ZoneAirport:
		return ZoneAirport
	default:
		return ZoneUnknown
	}
}

func (z Zone) Known() bool {
	return z == ZoneDowntown || z == ZoneSuburb || z == ZoneAirport
}

func (z Zone) String() string {
	if z == "" {
		return string(ZoneUnknown)
	}
	return string(z)
}

func (z Zone) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

func (z *Zone) UnmarshalText(b []byte) error {
	*z = ParseZone(string(b))
	return nil
}
