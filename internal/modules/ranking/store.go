// README: Ranking decision log backed by PostgreSQL.
package ranking

import (
	"context"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"fleetfare/internal/modules/pricing"
	"fleetfare/internal/types"
)

// Decision is the outcome of one best-request selection.
type Decision struct {
	DriverZone     types.Zone
	CandidateCount int
	BestRequestID  *string
	BestScore      *float64
}

type Store struct {
	db pricing.DB
}

func NewStore(db pricing.DB) *Store {
	return &Store{db: db}
}

func (s *Store) RecordDecision(ctx context.Context, d Decision) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.db.Exec(ctx, `
		INSERT INTO ranking_decisions (
			id, driver_zone, candidate_count, best_request_id, best_score, created_at
		) VALUES ($1, $2, $3, $4, $5, NOW())`,
		id,
		d.DriverZone.String(),
		d.CandidateCount,
		d.BestRequestID,
		d.BestScore,
	)
	if err != nil {
		return uuid.Nil, eris.Wrap(err, "ranking: insert decision")
	}
	return id, nil
}
