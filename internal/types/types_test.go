package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseZone(t *testing.T) {
	tests := []struct {
		in   string
		want Zone
	}{
		{"downtown", ZoneDowntown},
		{" Airport ", ZoneAirport},
		{"SUBURB", ZoneSuburb},
		{"harbour", ZoneUnknown},
		{"", ZoneUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseZone(tt.in))
		})
	}
}

func TestZoneJSON(t *testing.T) {
	var payload struct {
		Zone Zone `json:"zone"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"zone":"Airport"}`), &payload))
	assert.Equal(t, ZoneAirport, payload.Zone)

	require.NoError(t, json.Unmarshal([]byte(`{"zone":"moon"}`), &payload))
	assert.Equal(t, ZoneUnknown, payload.Zone)
	assert.False(t, payload.Zone.Known())

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"zone":"unknown"}`, string(out))
}

func TestWeatherString(t *testing.T) {
	assert.Equal(t, "Clear", WeatherClear.String())
	assert.Equal(t, "Snowy", WeatherSnowy.String())
	assert.Equal(t, "Foggy", WeatherFoggy.String())
	assert.Equal(t, "Unknown", Weather(7).String())
	assert.False(t, Weather(-1).Known())
}

func TestRoundCents(t *testing.T) {
	assert.Equal(t, 148.97, RoundCents(148.96885))
	assert.Equal(t, 40.0, RoundCents(40))
	assert.Equal(t, 0.13, RoundCents(0.125))
}

func TestMoneyFromFare(t *testing.T) {
	m := MoneyFromFare(148.97, "")
	assert.Equal(t, int64(14897), m.Amount)
	assert.Equal(t, DefaultCurrency, m.Currency)
	assert.InDelta(t, 148.97, m.Float(), 1e-9)
}
