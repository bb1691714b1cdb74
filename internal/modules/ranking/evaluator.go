// README: Request evaluator: profit, efficiency and opportunity cost combined into one weighted score.
package ranking

import (
	"cmp"
	"math"
	"slices"
	"sync/atomic"
	"time"

	"fleetfare/internal/config"
	"fleetfare/internal/modules/pricing"
	"fleetfare/internal/types"
)

const (
	endOfShiftMinutes = 30.0
	rushHourCostRate  = 0.5
	offPeakCostRate   = 0.2
	overtimePenalty   = 3.0
)

type EvaluatorOption func(*Evaluator)

// WithEvaluatorLocation sets the zone for the opportunity-cost hour. It should
// match the pricing engine's.
func WithEvaluatorLocation(loc *time.Location) EvaluatorOption {
	return func(e *Evaluator) { e.loc = loc }
}

func WithEvaluatorMetrics(m *Metrics) EvaluatorOption {
	return func(e *Evaluator) { e.metrics = m }
}

// Evaluator is safe for concurrent use. Weights can be swapped at any time.
type Evaluator struct {
	pricer  pricing.Pricer
	weights atomic.Pointer[config.ScoreWeights]
	loc     *time.Location
	metrics *Metrics
	// fare bounds applied to attached fares
	minFare, maxFare float64
}

// pricingConfigurer is implemented by *pricing.Engine.
type pricingConfigurer interface {
	Config() config.PricingConfig
}

func NewEvaluator(pricer pricing.Pricer, weights config.ScoreWeights, opts ...EvaluatorOption) *Evaluator {
	bounds := config.DefaultPricingConfig()
	if pc, ok := pricer.(pricingConfigurer); ok {
		bounds = pc.Config()
	}
	e := &Evaluator{pricer: pricer, loc: time.UTC, minFare: bounds.MinPrice, maxFare: bounds.MaxPrice}
	e.weights.Store(&weights)
	for _, opt := range opts {
		opt(e)
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	return e
}

// SetWeights replaces the scoring weights. Weights are used as given.
func (e *Evaluator) SetWeights(w config.ScoreWeights) {
	e.weights.Store(&w)
}

func (e *Evaluator) Weights() config.ScoreWeights {
	return *e.weights.Load()
}

// Evaluate scores req for driver. An attached fare is used as is; otherwise
// the request is priced for user at the given supply.
func (e *Evaluator) Evaluate(req pricing.TripRequest, driver DriverProfile, user pricing.UserProfile, supply int) RequestScore {
	fare := e.fare(req, user, supply)

	deadhead := DeadheadBetween(driver.CurrentZone, req.Zone)
	totalDistance := deadhead.Miles + req.Distance
	profit := fare - totalDistance*driver.CostPerMile

	pickup := deadhead.Minutes
	totalTime := pickup + req.Duration
	if driver.ReturnToBase && driver.ShiftRemainingMinutes-totalTime < endOfShiftMinutes {
		totalTime += DeadheadBetween(req.Zone, driver.baseZone()).Minutes
	}

	ppm := profit / math.Max(totalTime, 1)
	ppmile := profit / math.Max(totalDistance, 0.1)
	surge := fare / math.Max(7+1.5*req.Distance+0.2*req.Duration, 1)
	opportunity := opportunityCost(pricing.HourOf(req.Timestamp, e.loc), totalTime, driver.ShiftRemainingMinutes)

	w := e.weights.Load()
	final := w.Profit*profit +
		w.ProfitPerMinute*ppm +
		w.ProfitPerMile*ppmile +
		w.PickupTime*pickup +
		w.SurgeFactor*surge +
		w.OpportunityCost*opportunity

	return RequestScore{
		RequestID:        req.ID(),
		Fare:             fare,
		Profit:           profit,
		DeadheadDistance: deadhead.Miles,
		PickupTime:       pickup,
		TotalTime:        totalTime,
		ProfitPerMinute:  ppm,
		ProfitPerMile:    ppmile,
		SurgeFactor:      surge,
		OpportunityCost:  opportunity,
		FinalScore:       final,
		Request:          req,
	}
}

// Rank scores every request and orders them best first. Ties keep input order.
func (e *Evaluator) Rank(reqs []pricing.TripRequest, driver DriverProfile, profiles map[types.ID]pricing.UserProfile, supply int) []RequestScore {
	scores := make([]RequestScore, 0, len(reqs))
	for _, r := range reqs {
		user, ok := profiles[r.UserID]
		if !ok {
			user = pricing.DefaultUserProfile()
		}
		scores = append(scores, e.Evaluate(r, driver, user, supply))
	}
	slices.SortStableFunc(scores, func(a, b RequestScore) int {
		return cmp.Compare(b.FinalScore, a.FinalScore)
	})
	e.metrics.observeRanked(len(scores))
	return scores
}

// SelectBest returns the top request, or false when there is none or its
// fare is below the driver's minimum.
func (e *Evaluator) SelectBest(reqs []pricing.TripRequest, driver DriverProfile, profiles map[types.ID]pricing.UserProfile, supply int) (RequestScore, bool) {
	ranked := e.Rank(reqs, driver, profiles, supply)
	best, ok := Best(ranked, driver)
	e.metrics.observeSelection(len(ranked), ok)
	return best, ok
}

// Best applies the minimum-fare rule to an already ranked list.
func Best(ranked []RequestScore, driver DriverProfile) (RequestScore, bool) {
	if len(ranked) == 0 || ranked[0].Fare < driver.MinAcceptableFare {
		return RequestScore{}, false
	}
	return ranked[0], true
}

// fare uses a fare attached by the pricing service, held to the price bounds,
// and prices the request otherwise.
func (e *Evaluator) fare(req pricing.TripRequest, user pricing.UserProfile, supply int) float64 {
	if req.Fare != nil && !math.IsNaN(*req.Fare) && !math.IsInf(*req.Fare, 0) {
		return min(max(*req.Fare, e.minFare), e.maxFare)
	}
	return e.pricer.CalculatePrice(req, user, supply)
}

func opportunityCost(hour int, totalTime, shiftRemaining float64) float64 {
	rate := offPeakCostRate
	if isRushHour(hour) {
		rate = rushHourCostRate
	}
	cost := totalTime * rate
	if totalTime > shiftRemaining {
		cost *= overtimePenalty
	}
	return cost
}

func isRushHour(hour int) bool {
	switch hour {
	case 7, 8, 9, 17, 18, 19:
		return true
	}
	return false
}
