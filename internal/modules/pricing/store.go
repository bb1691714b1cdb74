// README: Quote ledger backed by PostgreSQL. Writes are best-effort from the service's point of view.
package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"

	"fleetfare/internal/types"
)

// DB is the subset of pgxpool.Pool the stores use.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuoteRecord is a persisted quote.
type QuoteRecord struct {
	ID              uuid.UUID   `json:"id"`
	RequestID       string      `json:"request_id"`
	UserID          types.ID    `json:"user_id"`
	Zone            types.Zone  `json:"zone"`
	Price           types.Money `json:"price"`
	Fallback        bool        `json:"fallback"`
	Surge           float64     `json:"surge"`
	TotalMultiplier float64     `json:"total_multiplier"`
	CreatedAt       time.Time   `json:"created_at"`
}

type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) RecordQuote(ctx context.Context, q Quote) (uuid.UUID, error) {
	id := uuid.New()
	price := q.Money()
	_, err := s.db.Exec(ctx, `
		INSERT INTO fare_quotes (
			id, request_id, user_id, zone, price_cents, currency,
			fallback, surge, total_multiplier, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		id,
		q.RequestID,
		string(q.UserID),
		q.Zone.String(),
		price.Amount,
		price.Currency,
		q.Fallback,
		q.Surge,
		q.TotalMultiplier,
	)
	if err != nil {
		return uuid.Nil, eris.Wrap(err, "pricing: insert quote")
	}
	return id, nil
}

// RecentQuotes returns the latest quotes for a zone, newest first.
func (s *Store) RecentQuotes(ctx context.Context, zone types.Zone, limit int) ([]QuoteRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, request_id, user_id, zone, price_cents, currency,
		       fallback, surge, total_multiplier, created_at
		FROM fare_quotes
		WHERE zone = $1
		ORDER BY created_at DESC
		LIMIT $2`, zone.String(), limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "pricing: query quotes")
	}
	defer rows.Close()

	var out []QuoteRecord
	for rows.Next() {
		var r QuoteRecord
		var id, userID, zoneName string
		if err := rows.Scan(
			&id, &r.RequestID, &userID, &zoneName, &r.Price.Amount, &r.Price.Currency,
			&r.Fallback, &r.Surge, &r.TotalMultiplier, &r.CreatedAt,
		); err != nil {
			return nil, eris.Wrap(err, "pricing: scan quote")
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, eris.Wrapf(err, "pricing: quote id %q", id)
		}
		r.UserID = types.ID(userID)
		r.Zone = types.ParseZone(zoneName)
		out = append(out, r)
	}
	return out, eris.Wrap(rows.Err(), "pricing: iterate quotes")
}
