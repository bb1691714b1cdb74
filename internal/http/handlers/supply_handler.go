// README: Supply handlers: driver availability heartbeats and per-zone counts.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetfare/internal/types"
)

// SupplyService is implemented by supply.Service.
type SupplyService interface {
	SetAvailability(ctx context.Context, driverID types.ID, zone types.Zone, available bool) error
	Count(ctx context.Context, zone types.Zone) (int, error)
	Counts(ctx context.Context) (map[types.Zone]int, error)
}

type SupplyHandler struct {
	supply SupplyService
}

// NewSupplyHandler accepts a nil service; every route then answers 503.
func NewSupplyHandler(svc SupplyService) *SupplyHandler {
	return &SupplyHandler{supply: svc}
}

type availabilityReq struct {
	Zone      types.Zone `json:"zone"`
	Available *bool      `json:"available"`
}

func (h *SupplyHandler) available(c *gin.Context) bool {
	if h.supply == nil {
		writeError(c, http.StatusServiceUnavailable, "supply registry not configured")
		return false
	}
	return true
}

func (h *SupplyHandler) SetAvailability(c *gin.Context) {
	if !h.available(c) {
		return
	}
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid driver id")
		return
	}
	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Available == nil {
		writeError(c, http.StatusBadRequest, "missing available")
		return
	}
	if err := h.supply.SetAvailability(c.Request.Context(), types.ID(id), req.Zone, *req.Available); err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"driver_id": id, "zone": req.Zone, "available": *req.Available})
}

func (h *SupplyHandler) Zone(c *gin.Context) {
	if !h.available(c) {
		return
	}
	zone := types.ParseZone(c.Param("zone"))
	n, err := h.supply.Count(c.Request.Context(), zone)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"zone": zone, "available_drivers": n})
}

func (h *SupplyHandler) All(c *gin.Context) {
	if !h.available(c) {
		return
	}
	counts, err := h.supply.Counts(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, counts)
}
