// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"fleetfare/internal/http/handlers"
	"fleetfare/internal/http/middleware"
	"fleetfare/internal/modules/pricing"
	"fleetfare/internal/modules/ranking"
	"fleetfare/internal/modules/supply"
)

type ServerDeps struct {
	Pricing *pricing.Service
	Ranking *ranking.Service
	// Supply is nil when Redis is not configured.
	Supply     *supply.Service
	Gatherer   prometheus.Gatherer
	Logger     *zap.Logger
	AdminToken string
}

type Server struct {
	pricing    *handlers.PricingHandler
	ranking    *handlers.RankingHandler
	supply     *handlers.SupplyHandler
	gatherer   prometheus.Gatherer
	log        *zap.Logger
	adminToken string
}

func NewServer(deps ServerDeps) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.L()
	}
	var supplySvc handlers.SupplyService
	if deps.Supply != nil {
		supplySvc = deps.Supply
	}
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		pricing:    handlers.NewPricingHandler(deps.Pricing),
		ranking:    handlers.NewRankingHandler(deps.Ranking),
		supply:     handlers.NewSupplyHandler(supplySvc),
		gatherer:   gatherer,
		log:        log,
		adminToken: deps.AdminToken,
	}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	r.Use(middleware.Logging(s.log), middleware.Recovery(s.log))

	api := r.Group("/api")
	api.POST("/pricing/quote", s.pricing.Quote)

	api.POST("/drivers/rank-requests", s.ranking.Rank)
	api.POST("/drivers/best-request", s.ranking.Best)
	api.PUT("/drivers/:id/availability", s.supply.SetAvailability)

	api.GET("/supply", s.supply.All)
	api.GET("/supply/:zone", s.supply.Zone)

	api.GET("/ranking/weights", s.ranking.GetWeights)
	api.PUT("/ranking/weights", middleware.RequireToken(s.adminToken), s.ranking.SetWeights)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	return r
}
