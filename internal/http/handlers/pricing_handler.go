// README: Pricing handler: quote a single trip request.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetfare/internal/modules/pricing"
)

type PricingHandler struct {
	pricing *pricing.Service
	now     func() time.Time
}

func NewPricingHandler(svc *pricing.Service) *PricingHandler {
	return &PricingHandler{pricing: svc, now: time.Now}
}

type quoteReq struct {
	TripRequest   *tripRequestJSON     `json:"trip_request"`
	UserProfile   *pricing.UserProfile `json:"user_profile"`
	CurrentSupply *int                 `json:"current_supply"`
}

type quoteResp struct {
	Price float64       `json:"price"`
	Quote pricing.Quote `json:"quote"`
}

func (h *PricingHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.TripRequest == nil {
		writeError(c, http.StatusBadRequest, "missing trip_request")
		return
	}
	if req.CurrentSupply != nil && *req.CurrentSupply < 0 {
		writeError(c, http.StatusBadRequest, "current_supply must be >= 0")
		return
	}
	user := pricing.DefaultUserProfile()
	if req.UserProfile != nil {
		user = *req.UserProfile
	}

	q := h.pricing.Price(c.Request.Context(), req.TripRequest.toDomain(h.now()), user, req.CurrentSupply)
	writeJSON(c, http.StatusOK, quoteResp{Price: q.Price, Quote: q})
}
