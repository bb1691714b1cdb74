// README: Wires config into the model, engine, services and their optional Redis/Postgres collaborators.
package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"fleetfare/internal/config"
	"fleetfare/internal/infra"
	"fleetfare/internal/modules/demand"
	"fleetfare/internal/modules/faremodel"
	"fleetfare/internal/modules/pricing"
	"fleetfare/internal/modules/ranking"
	"fleetfare/internal/modules/supply"
)

type app struct {
	cfg      *config.Config
	log      *zap.Logger
	registry *prometheus.Registry

	db    *pgxpool.Pool
	redis *redis.Client

	engine  *pricing.Engine
	pricing *pricing.Service
	ranking *ranking.Service
	supply  *supply.Service
}

// newApp fails if the model artifact cannot be loaded or a configured
// backing store is unreachable.
func newApp(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...pricing.Option) (*app, error) {
	if log == nil {
		log = zap.L()
	}
	a := &app{cfg: cfg, log: log, registry: prometheus.NewRegistry()}
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	model, err := faremodel.Open(cfg.Model.Path)
	if err != nil {
		return nil, eris.Wrap(err, "load fare model")
	}
	forecaster, err := demand.NewDefault()
	if err != nil {
		return nil, eris.Wrap(err, "train demand forecaster")
	}

	engineOpts := append([]pricing.Option{
		pricing.WithLogger(log),
		pricing.WithMetrics(pricing.NewMetrics(a.registry)),
	}, opts...)
	a.engine, err = pricing.NewEngine(cfg.Pricing, model, forecaster, engineOpts...)
	if err != nil {
		return nil, err
	}

	var (
		cache     pricing.FareCache
		ledger    pricing.QuoteRecorder
		counter   pricing.SupplyCounter
		decisions ranking.DecisionRecorder
	)

	if cfg.Redis.Addr != "" {
		a.redis, err = infra.NewRedis(ctx, cfg.Redis.Addr)
		if err != nil {
			a.Close()
			return nil, err
		}
		cache = pricing.NewRedisFareCache(a.redis, cfg.Cache.TTL)
		a.supply = supply.NewService(supply.NewStore(a.redis), cfg.Supply.TTL, log)
		counter = a.supply
	} else {
		cache = pricing.NewLRUFareCache(cfg.Cache.Size, cfg.Cache.TTL)
	}

	if cfg.DB.DSN != "" {
		a.db, err = infra.NewDB(ctx, cfg.DB.DSN)
		if err != nil {
			a.Close()
			return nil, err
		}
		ledger = pricing.NewStore(a.db)
		decisions = ranking.NewStore(a.db)
	}

	a.pricing = pricing.NewService(a.engine, cache, ledger, counter, log)
	evaluator := ranking.NewEvaluator(a.engine, cfg.Ranking.Weights,
		ranking.WithEvaluatorLocation(a.engine.Location()),
		ranking.WithEvaluatorMetrics(ranking.NewMetrics(a.registry)),
	)
	a.ranking = ranking.NewService(evaluator, a.pricing, decisions, log)

	log.Info("fare engine ready",
		zap.String("model_version", model.Version()),
		zap.String("surge_policy", cfg.Pricing.SurgePolicy),
		zap.String("timezone", a.engine.Location().String()),
		zap.Bool("redis", a.redis != nil),
		zap.Bool("postgres", a.db != nil),
	)
	return a, nil
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}
