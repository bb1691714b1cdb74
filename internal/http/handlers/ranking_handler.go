// README: Ranking handlers: order a driver's candidate requests, pick the best one, tune weights.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetfare/internal/config"
	"fleetfare/internal/modules/pricing"
	"fleetfare/internal/modules/ranking"
	"fleetfare/internal/types"
)

type RankingHandler struct {
	ranking *ranking.Service
	now     func() time.Time
}

func NewRankingHandler(svc *ranking.Service) *RankingHandler {
	return &RankingHandler{ranking: svc, now: time.Now}
}

type rankReq struct {
	DriverProfile *ranking.DriverProfile             `json:"driver_profile"`
	UserProfiles  map[types.ID]pricing.UserProfile `json:"user_profiles"`
	TripRequests  []tripRequestJSON                `json:"trip_requests"`
	CurrentSupply *int                             `json:"current_supply"`
}

func (h *RankingHandler) bind(c *gin.Context) (ranking.RankInput, bool) {
	var req rankReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return ranking.RankInput{}, false
	}
	if req.DriverProfile == nil {
		writeError(c, http.StatusBadRequest, "missing driver_profile")
		return ranking.RankInput{}, false
	}
	if req.CurrentSupply != nil && *req.CurrentSupply < 0 {
		writeError(c, http.StatusBadRequest, "current_supply must be >= 0")
		return ranking.RankInput{}, false
	}
	now := h.now()
	reqs := make([]pricing.TripRequest, len(req.TripRequests))
	for i, r := range req.TripRequests {
		reqs[i] = r.toDomain(now)
	}
	return ranking.RankInput{
		Driver:   *req.DriverProfile,
		Profiles: req.UserProfiles,
		Requests: reqs,
		Supply:   req.CurrentSupply,
	}, true
}

func (h *RankingHandler) Rank(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	ranked := h.ranking.Rank(c.Request.Context(), in)
	writeJSON(c, http.StatusOK, gin.H{"status": "success", "ranked_requests": ranked})
}

func (h *RankingHandler) Best(c *gin.Context) {
	in, ok := h.bind(c)
	if !ok {
		return
	}
	best, found := h.ranking.Best(c.Request.Context(), in)
	if !found {
		writeJSON(c, http.StatusOK, gin.H{"status": "success", "best_request": nil})
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"status": "success", "best_request": best})
}

func (h *RankingHandler) GetWeights(c *gin.Context) {
	writeJSON(c, http.StatusOK, h.ranking.Evaluator().Weights())
}

func (h *RankingHandler) SetWeights(c *gin.Context) {
	var w config.ScoreWeights
	if err := c.ShouldBindJSON(&w); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	h.ranking.Evaluator().SetWeights(w)
	writeJSON(c, http.StatusOK, w)
}
