// README: Ranking service prices candidates through the pricing service, ranks them and logs selections.
package ranking

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetfare/internal/modules/pricing"
	"fleetfare/internal/types"
)

// DecisionRecorder persists best-request selections.
type DecisionRecorder interface {
	RecordDecision(ctx context.Context, d Decision) (uuid.UUID, error)
}

// RankInput is one driver's candidate set.
type RankInput struct {
	Driver   DriverProfile
	Profiles map[types.ID]pricing.UserProfile
	Requests []pricing.TripRequest
	// Supply overrides the live driver count when set.
	Supply *int
}

type Service struct {
	evaluator *Evaluator
	pricing   *pricing.Service
	store     DecisionRecorder
	log       *zap.Logger
}

// NewService wires the evaluator to the pricing service. store may be nil.
func NewService(evaluator *Evaluator, pricingSvc *pricing.Service, store DecisionRecorder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.L()
	}
	return &Service{evaluator: evaluator, pricing: pricingSvc, store: store, log: log}
}

func (s *Service) Evaluator() *Evaluator { return s.evaluator }

// Rank prices every request through the pricing service, so a request quoted
// to the rider earlier with the same inputs is ranked at the same fare, then
// orders them best first. Fares already on the requests are replaced.
func (s *Service) Rank(ctx context.Context, in RankInput) []RequestScore {
	reqs := make([]pricing.TripRequest, len(in.Requests))
	for i, r := range in.Requests {
		user, ok := in.Profiles[r.UserID]
		if !ok {
			user = pricing.DefaultUserProfile()
		}
		reqs[i] = r.WithFare(s.pricing.Price(ctx, r, user, in.Supply).Price)
	}
	// every request carries a fare, so the evaluator never prices with this
	supply := s.pricing.Engine().Config().DefaultSupply
	if in.Supply != nil {
		supply = *in.Supply
	}
	return s.evaluator.Rank(reqs, in.Driver, in.Profiles, supply)
}

// Best ranks the candidates and returns the top one if it clears the
// driver's minimum fare.
func (s *Service) Best(ctx context.Context, in RankInput) (RequestScore, bool) {
	ranked := s.Rank(ctx, in)
	best, ok := Best(ranked, in.Driver)
	s.evaluator.metrics.observeSelection(len(ranked), ok)

	if s.store != nil {
		d := Decision{DriverZone: in.Driver.CurrentZone, CandidateCount: len(ranked)}
		if ok {
			d.BestRequestID = &best.RequestID
			d.BestScore = &best.FinalScore
		}
		if _, err := s.store.RecordDecision(ctx, d); err != nil {
			s.log.Warn("ranking decision write failed", zap.Error(err))
		}
	}
	return best, ok
}
