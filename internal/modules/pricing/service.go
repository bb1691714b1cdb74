// README: Pricing service wraps the engine with live supply, the fare cache and the quote ledger.
package pricing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetfare/internal/types"
)

// SupplyCounter reports available drivers in a zone.
type SupplyCounter interface {
	Count(ctx context.Context, zone types.Zone) (int, error)
}

// QuoteRecorder persists quotes.
type QuoteRecorder interface {
	RecordQuote(ctx context.Context, q Quote) (uuid.UUID, error)
}

type Service struct {
	engine        *Engine
	cache         FareCache
	ledger        QuoteRecorder
	supply        SupplyCounter
	defaultSupply int
	log           *zap.Logger
}

// NewService wires the collaborators. cache, ledger and supply may be nil.
func NewService(engine *Engine, cache FareCache, ledger QuoteRecorder, supply SupplyCounter, log *zap.Logger) *Service {
	if log == nil {
		log = zap.L()
	}
	return &Service{
		engine:        engine,
		cache:         cache,
		ledger:        ledger,
		supply:        supply,
		defaultSupply: engine.Config().DefaultSupply,
		log:           log,
	}
}

func (s *Service) Engine() *Engine { return s.engine }

// ResolveSupply returns explicit when given, else the live count for zone,
// else the configured default.
func (s *Service) ResolveSupply(ctx context.Context, zone types.Zone, explicit *int) int {
	if explicit != nil {
		return *explicit
	}
	if s.supply != nil && zone.Known() {
		n, err := s.supply.Count(ctx, zone)
		if err == nil && n > 0 {
			return n
		}
		if err != nil {
			s.log.Warn("supply lookup failed", zap.String("zone", zone.String()), zap.Error(err))
		}
	}
	return s.defaultSupply
}

// Price returns the cached quote when the same request was priced with the
// same profile and supply, otherwise computes, caches and records a new one.
func (s *Service) Price(ctx context.Context, req TripRequest, user UserProfile, supply *int) Quote {
	id := req.ID()
	n := s.ResolveSupply(ctx, req.Zone, supply)
	key := FareKey(req, user, n)
	if s.cache != nil {
		q, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn("fare cache get failed", zap.String("request_id", id), zap.Error(err))
		}
		if ok {
			return q
		}
	}

	q := s.engine.Quote(req, user, n)

	if s.cache != nil && !q.Fallback {
		if err := s.cache.Set(ctx, key, q); err != nil {
			s.log.Warn("fare cache set failed", zap.String("request_id", id), zap.Error(err))
		}
	}
	if s.ledger != nil {
		if _, err := s.ledger.RecordQuote(ctx, q); err != nil {
			s.log.Warn("quote ledger write failed", zap.String("request_id", id), zap.Error(err))
		}
	}
	return q
}
