// README: Pricing engine: rule fare blended with the learned fare, then surge, situational multipliers and personalization.
package pricing

import (
	"math"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"fleetfare/internal/config"
	"fleetfare/internal/modules/faremodel"
	"fleetfare/internal/types"
)

const (
	ruleWeight = 0.6
	mlWeight   = 0.4

	minTotalMultiplier = 0.8
	maxTotalMultiplier = 2.0

	loyaltyTierThreshold = 4
	loyaltyDiscount      = 0.9
)

// Fallback reasons, used as metric labels.
const (
	ReasonInvalidInput = "invalid_input"
	ReasonModel        = "model"
	ReasonNonFinite    = "non_finite"
	ReasonPanic        = "panic"
)

var ErrInvalidRequest = eris.New("pricing: invalid trip request")

// FarePredictor is the learned fare model.
type FarePredictor interface {
	PredictFare(in faremodel.Input) (float64, error)
}

// DemandPredictor forecasts ride demand for an hour of day.
type DemandPredictor interface {
	Predict(hour float64) float64
}

// Pricer prices a single request.
type Pricer interface {
	CalculatePrice(req TripRequest, user UserProfile, supply int) float64
}

type Option func(*Engine)

// WithJitter replaces the surge noise source.
func WithJitter(j Jitter) Option {
	return func(e *Engine) { e.jitter = j }
}

// WithLocation sets the zone used to derive the hour of day.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine is immutable after construction and safe for concurrent use.
type Engine struct {
	cfg     config.PricingConfig
	policy  SurgePolicy
	model   FarePredictor
	demand  DemandPredictor
	jitter  Jitter
	loc     *time.Location
	log     *zap.Logger
	metrics *Metrics
}

func NewEngine(cfg config.PricingConfig, model FarePredictor, demand DemandPredictor, opts ...Option) (*Engine, error) {
	if model == nil {
		return nil, eris.New("pricing: fare model is required")
	}
	if demand == nil {
		return nil, eris.New("pricing: demand forecaster is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, eris.Wrap(err, "pricing: engine config")
	}
	policy, err := ParseSurgePolicy(cfg.SurgePolicy)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		policy: policy,
		model:  model,
		demand: demand,
		jitter: UniformJitter,
		loc:    cfg.Location(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.L()
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.jitter == nil {
		e.jitter = UniformJitter
	}
	return e, nil
}

func (e *Engine) Config() config.PricingConfig { return e.cfg }

func (e *Engine) Location() *time.Location { return e.loc }

// CalculatePrice never fails; on any error the minimum price is returned.
func (e *Engine) CalculatePrice(req TripRequest, user UserProfile, supply int) float64 {
	return e.Quote(req, user, supply).Price
}

// Quote prices req and reports every intermediate factor.
func (e *Engine) Quote(req TripRequest, user UserProfile, supply int) (q Quote) {
	q = Quote{
		RequestID: req.ID(),
		UserID:    req.UserID,
		Zone:      req.Zone,
		Supply:    supply,
		Currency:  types.DefaultCurrency,
	}

	defer func() {
		if r := recover(); r != nil {
			q = e.fallback(q, ReasonPanic, eris.Errorf("pricing: panic: %v", r))
		}
	}()

	if err := validate(req, user); err != nil {
		return e.fallback(q, ReasonInvalidInput, err)
	}

	q.Hour = HourOf(req.Timestamp, e.loc)
	q.DistanceKm = req.Distance * milesToKm

	q.RuleFare = e.cfg.BaseFare +
		e.cfg.PerKmRate*q.DistanceKm +
		e.cfg.PerMinRate*req.Duration +
		e.cfg.BookingFee
	q.TimeMultiplier = TimeMultiplier(e.cfg, q.Hour)
	q.RuleFare *= q.TimeMultiplier

	ml, err := e.model.PredictFare(faremodel.Input{
		DistanceKm:      q.DistanceKm,
		Hour:            q.Hour,
		TrafficLevel:    req.TrafficLevel,
		RideDemandLevel: req.RideDemandLevel,
		WeatherSeverity: int(req.WeatherSeverity),
		TrafficBlocks:   req.TrafficBlocks,
		Holiday:         req.IsHoliday,
		EventNearby:     req.IsEventNearby,
	})
	if err != nil {
		return e.fallback(q, ReasonModel, eris.Wrap(err, "pricing: fare model"))
	}
	q.MLFare = ml
	q.BaseFare = ruleWeight*q.RuleFare + mlWeight*q.MLFare

	q.Demand = e.demand.Predict(float64(q.Hour))
	q.EffectiveDemand = q.Demand * DemandWeight(q.Hour)
	q.DemandSupplyRatio = q.EffectiveDemand / float64(max(supply, 1))

	switch e.policy {
	case SurgeLinear:
		q.Surge = LinearSurge(q.DemandSupplyRatio, e.cfg.SurgeThreshold, e.cfg.SurgeScaling)
	default:
		q.Surge = LogisticSurge(q.DemandSupplyRatio, e.cfg.SurgeThreshold, e.jitter)
	}

	q.ZoneMultiplier = ZoneMultiplier(req.Zone)
	q.TrafficMultiplier = TrafficMultiplier(req.TrafficBlocks)
	q.WeatherMultiplier = WeatherMultiplier(req.WeatherSeverity)

	q.RawMultiplier = 0.4*q.Surge + 0.2*q.ZoneMultiplier + 0.2*q.TrafficMultiplier + 0.2*q.WeatherMultiplier
	q.TotalMultiplier = clamp(q.RawMultiplier, minTotalMultiplier, maxTotalMultiplier)

	price := q.BaseFare * q.TotalMultiplier * user.PriceSensitivity
	if user.LoyaltyTier >= loyaltyTierThreshold {
		price *= loyaltyDiscount
		q.LoyaltyDiscount = true
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return e.fallback(q, ReasonNonFinite, eris.Errorf("pricing: non-finite price %v", price))
	}

	q.Price = types.RoundCents(clamp(price, e.cfg.MinPrice, e.cfg.MaxPrice))
	e.metrics.observeQuote(q.Zone, q.Surge, q.Price)
	return q
}

func (e *Engine) fallback(q Quote, reason string, err error) Quote {
	e.log.Error("pricing fallback to minimum price",
		zap.String("request_id", q.RequestID),
		zap.String("reason", reason),
		zap.Error(err),
	)
	e.metrics.observeFallback(reason)

	q.Price = types.RoundCents(e.cfg.MinPrice)
	q.Fallback = true
	q.FallbackReason = reason
	return q
}

// HourOf returns the hour of day of a UNIX timestamp in loc.
func HourOf(ts float64, loc *time.Location) int {
	sec, frac := math.Modf(ts)
	return time.Unix(int64(sec), int64(frac*1e9)).In(loc).Hour()
}

func validate(req TripRequest, user UserProfile) error {
	switch {
	case !finite(req.Distance) || req.Distance < 0:
		return eris.Wrapf(ErrInvalidRequest, "distance %v", req.Distance)
	case !finite(req.Duration) || req.Duration < 0:
		return eris.Wrapf(ErrInvalidRequest, "duration %v", req.Duration)
	case !finite(req.Timestamp):
		return eris.Wrapf(ErrInvalidRequest, "timestamp %v", req.Timestamp)
	case !finite(user.PriceSensitivity) || user.PriceSensitivity <= 0:
		return eris.Wrapf(ErrInvalidRequest, "price sensitivity %v", user.PriceSensitivity)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
