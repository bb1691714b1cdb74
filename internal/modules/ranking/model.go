// README: Driver profile, per-request score and the zone-to-zone deadhead table.
package ranking

import (
	"encoding/json"

	"fleetfare/internal/modules/pricing"
	"fleetfare/internal/types"
)

const defaultMinAcceptableFare = 5.0

// DriverProfile is the driver's current state and cost structure.
type DriverProfile struct {
	CurrentZone           types.Zone `json:"current_location"`
	CurrentFuel           float64    `json:"current_fuel"`
	ShiftRemainingMinutes float64    `json:"shift_remaining_time"`
	EarningsToday         float64    `json:"earnings_today"`
	EarningsTarget        float64    `json:"earnings_target"`
	VehicleMPG            float64    `json:"vehicle_mpg"`
	CostPerMile           float64    `json:"cost_per_mile"`
	ReturnToBase          bool       `json:"return_to_base"`
	// BaseZone is where the driver ends the shift. Empty means downtown.
	BaseZone          types.Zone `json:"base_location,omitempty"`
	MinAcceptableFare float64    `json:"min_acceptable_fare"`
}

func DefaultDriverProfile() DriverProfile {
	return DriverProfile{MinAcceptableFare: defaultMinAcceptableFare}
}

// UnmarshalJSON fills absent fields from DefaultDriverProfile.
func (d *DriverProfile) UnmarshalJSON(b []byte) error {
	type plain DriverProfile
	p := plain(DefaultDriverProfile())
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*d = DriverProfile(p)
	return nil
}

func (d DriverProfile) baseZone() types.Zone {
	if d.BaseZone == "" {
		return types.ZoneDowntown
	}
	return d.BaseZone
}

// RequestScore is the evaluation of one request for one driver.
type RequestScore struct {
	RequestID        string              `json:"request_id"`
	Fare             float64             `json:"fare"`
	Profit           float64             `json:"profit"`
	DeadheadDistance float64             `json:"deadhead_distance"`
	PickupTime       float64             `json:"pickup_time"`
	TotalTime        float64             `json:"total_time"`
	ProfitPerMinute  float64             `json:"profit_per_minute"`
	ProfitPerMile    float64             `json:"profit_per_mile"`
	SurgeFactor      float64             `json:"surge_factor"`
	OpportunityCost  float64             `json:"opportunity_cost"`
	FinalScore       float64             `json:"final_score"`
	Request          pricing.TripRequest `json:"request"`
}

// Deadhead is the empty drive between two zones.
type Deadhead struct {
	Miles   float64
	Minutes float64
}

var defaultDeadhead = Deadhead{Miles: 3.0, Minutes: 10}

var deadheadTable = map[[2]types.Zone]Deadhead{
	{types.ZoneDowntown, types.ZoneDowntown}: {1.5, 8},
	{types.ZoneDowntown, types.ZoneSuburb}:   {5.0, 12},
	{types.ZoneDowntown, types.ZoneAirport}:  {10.0, 18},
	{types.ZoneSuburb, types.ZoneDowntown}:   {5.0, 12},
	{types.ZoneSuburb, types.ZoneSuburb}:     {2.0, 6},
	{types.ZoneSuburb, types.ZoneAirport}:    {8.0, 15},
	{types.ZoneAirport, types.ZoneDowntown}:  {10.0, 18},
	{types.ZoneAirport, types.ZoneSuburb}:    {8.0, 15},
	{types.ZoneAirport, types.ZoneAirport}:   {1.0, 5},
}

// DeadheadBetween looks up the static table; unknown pairs get 3 mi / 10 min.
func DeadheadBetween(from, to types.Zone) Deadhead {
	if d, ok := deadheadTable[[2]types.Zone{from, to}]; ok {
		return d
	}
	return defaultDeadhead
}
