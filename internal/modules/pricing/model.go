// README: Pricing inputs (trip request, rider profile) and the quote breakdown.
package pricing

import (
	"encoding/json"
	"strconv"

	"fleetfare/internal/types"
)

const milesToKm = 1.60934

// TripRequest is a single ride request. Distance is in miles, duration in
// minutes, timestamp in UNIX seconds.
type TripRequest struct {
	UserID          types.ID      `json:"user_id"`
	Distance        float64       `json:"distance"`
	Duration        float64       `json:"duration"`
	Zone            types.Zone    `json:"zone"`
	Timestamp       float64       `json:"timestamp"`
	RideDemandLevel int           `json:"ride_demand_level"`
	TrafficLevel    int           `json:"traffic_level"`
	WeatherSeverity types.Weather `json:"weather_severity"`
	TrafficBlocks   int           `json:"traffic_blocks"`
	IsHoliday       bool          `json:"is_holiday"`
	IsEventNearby   bool          `json:"is_event_nearby"`
	// Fare is set once the request has been priced. It never comes off the wire.
	Fare *float64 `json:"-"`
}

// ID identifies a request by rider and request time.
func (r TripRequest) ID() string {
	return string(r.UserID) + "_" + strconv.FormatFloat(r.Timestamp, 'f', -1, 64)
}

// WithFare returns a copy of r carrying fare.
func (r TripRequest) WithFare(fare float64) TripRequest {
	r.Fare = &fare
	return r
}

// UserProfile personalizes the price for a rider.
type UserProfile struct {
	LoyaltyTier      int     `json:"loyalty_tier"`
	PriceSensitivity float64 `json:"price_sensitivity"`
}

func DefaultUserProfile() UserProfile {
	return UserProfile{LoyaltyTier: 1, PriceSensitivity: 1.0}
}

// UnmarshalJSON fills absent fields from DefaultUserProfile.
func (u *UserProfile) UnmarshalJSON(b []byte) error {
	type plain UserProfile
	p := plain(DefaultUserProfile())
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*u = UserProfile(p)
	return nil
}

// Quote is the priced request with every intermediate factor.
type Quote struct {
	RequestID         string     `json:"request_id"`
	UserID            types.ID   `json:"user_id"`
	Zone              types.Zone `json:"zone"`
	Hour              int        `json:"hour"`
	DistanceKm        float64    `json:"distance_km"`
	RuleFare          float64    `json:"rule_fare"`
	TimeMultiplier    float64    `json:"time_multiplier"`
	MLFare            float64    `json:"ml_fare"`
	BaseFare          float64    `json:"base_fare"`
	Demand            float64    `json:"demand"`
	EffectiveDemand   float64    `json:"effective_demand"`
	Supply            int        `json:"supply"`
	DemandSupplyRatio float64    `json:"demand_supply_ratio"`
	Surge             float64    `json:"surge"`
	ZoneMultiplier    float64    `json:"zone_multiplier"`
	TrafficMultiplier float64    `json:"traffic_multiplier"`
	WeatherMultiplier float64    `json:"weather_multiplier"`
	RawMultiplier     float64    `json:"raw_multiplier"`
	TotalMultiplier   float64    `json:"total_multiplier"`
	LoyaltyDiscount   bool       `json:"loyalty_discount"`
	Price             float64    `json:"price"`
	Currency          string     `json:"currency"`
	Fallback          bool       `json:"fallback"`
	FallbackReason    string     `json:"fallback_reason,omitempty"`
}

// Money returns the price in minor units.
func (q Quote) Money() types.Money {
	return types.MoneyFromFare(q.Price, q.Currency)
}
