// README: Wire formats for trip requests; a missing timestamp means now.
package handlers

import (
	"time"

	"fleetfare/internal/modules/pricing"
)

type tripRequestJSON struct {
	pricing.TripRequest
	Timestamp *float64 `json:"timestamp"`
}

func (r tripRequestJSON) toDomain(now time.Time) pricing.TripRequest {
	req := r.TripRequest
	if r.Timestamp != nil {
		req.Timestamp = *r.Timestamp
	} else {
		req.Timestamp = float64(now.Unix())
	}
	return req
}
