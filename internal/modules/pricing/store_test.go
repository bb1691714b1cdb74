package pricing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleetfare/internal/types"
)

func TestStore_RecordQuote(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	q := Quote{
		RequestID:       "user_123_1647889200",
		UserID:          "user_123",
		Zone:            types.ZoneDowntown,
		Price:           148.97,
		Currency:        types.DefaultCurrency,
		Surge:           1.8,
		TotalMultiplier: 1.352,
	}

	pool.ExpectExec("INSERT INTO fare_quotes").WithArgs(
		pgxmock.AnyArg(),
		"user_123_1647889200",
		"user_123",
		"downtown",
		int64(14897),
		"INR",
		false,
		1.8,
		1.352,
	).WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := NewStore(pool).RecordQuote(context.Background(), q)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.NoError(t, pool.ExpectationsWereMet())
}

func TestStore_RecordQuoteError(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	pool.ExpectExec("INSERT INTO fare_quotes").WillReturnError(errors.New("connection reset"))

	id, err := NewStore(pool).RecordQuote(context.Background(), Quote{RequestID: "r"})
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, id)
}

func TestStore_RecentQuotes(t *testing.T) {
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer pool.Close()

	id := uuid.New()
	now := time.Date(2026, 3, 1, 19, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{
		"id", "request_id", "user_id", "zone", "price_cents", "currency",
		"fallback", "surge", "total_multiplier", "created_at",
	}).
		AddRow(id.String(), "u1_1", "u1", "airport", int64(21050), "INR", false, 1.4, 1.2, now).
		AddRow(uuid.NewString(), "u2_1", "u2", "airport", int64(4000), "INR", true, 0.0, 0.0, now.Add(-time.Minute))

	pool.ExpectQuery("SELECT (.+) FROM fare_quotes").
		WithArgs("airport", 10).
		WillReturnRows(rows)

	got, err := NewStore(pool).RecentQuotes(context.Background(), types.ZoneAirport, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, types.ZoneAirport, got[0].Zone)
	assert.Equal(t, 210.5, got[0].Price.Float())
	assert.True(t, got[1].Fallback)
	assert.NoError(t, pool.ExpectationsWereMet())
}
