package pricing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fleetfare/internal/types"
)

type fakeSupply struct {
	counts map[types.Zone]int
	err    error
}

func (f fakeSupply) Count(_ context.Context, zone types.Zone) (int, error) {
	return f.counts[zone], f.err
}

type fakeLedger struct {
	mu     sync.Mutex
	quotes []Quote
	err    error
}

func (f *fakeLedger) RecordQuote(_ context.Context, q Quote) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes = append(f.quotes, q)
	return uuid.New(), f.err
}

func TestService_ResolveSupply(t *testing.T) {
	e := newTestEngine(t, stubModel{fare: 100})
	explicit := 7

	tests := []struct {
		name   string
		supply SupplyCounter
		zone   types.Zone
		arg    *int
		want   int
	}{
		{"explicit wins", fakeSupply{counts: map[types.Zone]int{types.ZoneDowntown: 50}}, types.ZoneDowntown, &explicit, 7},
		{"live count", fakeSupply{counts: map[types.Zone]int{types.ZoneDowntown: 50}}, types.ZoneDowntown, nil, 50},
		{"empty zone uses default", fakeSupply{counts: map[types.Zone]int{}}, types.ZoneDowntown, nil, 20},
		{"lookup error uses default", fakeSupply{err: errors.New("down")}, types.ZoneAirport, nil, 20},
		{"unknown zone uses default", fakeSupply{counts: map[types.Zone]int{types.ZoneUnknown: 3}}, types.ZoneUnknown, nil, 20},
		{"no registry", nil, types.ZoneSuburb, nil, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewService(e, nil, nil, tt.supply, zap.NewNop())
			assert.Equal(t, tt.want, s.ResolveSupply(context.Background(), tt.zone, tt.arg))
		})
	}
}

func TestService_PriceCachesRepeats(t *testing.T) {
	e := newTestEngine(t, stubModel{fare: 100})
	cache := NewLRUFareCache(16, time.Minute)
	ledger := &fakeLedger{}
	s := NewService(e, cache, ledger, nil, zap.NewNop())

	supply := 20
	first := s.Price(context.Background(), downtownRequest(), DefaultUserProfile(), &supply)
	assert.Equal(t, 148.97, first.Price)
	assert.Equal(t, 1, cache.Len())

	again := s.Price(context.Background(), downtownRequest(), DefaultUserProfile(), &supply)
	assert.Equal(t, first, again)
	assert.Len(t, ledger.quotes, 1)
}

func TestService_PriceMissesOnChangedInputs(t *testing.T) {
	e := newTestEngine(t, stubModel{fare: 100})
	supply := 20

	long := downtownRequest()
	long.Distance = 40
	long.Duration = 90
	vip := UserProfile{LoyaltyTier: 5, PriceSensitivity: 0.5}
	more := 500

	tests := []struct {
		name   string
		req    TripRequest
		user   UserProfile
		supply int
	}{
		{"longer trip", long, DefaultUserProfile(), supply},
		{"different profile", downtownRequest(), vip, supply},
		{"different supply", downtownRequest(), DefaultUserProfile(), more},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := NewLRUFareCache(16, time.Minute)
			s := NewService(e, cache, nil, nil, zap.NewNop())

			base := s.Price(context.Background(), downtownRequest(), DefaultUserProfile(), &supply)
			require.Equal(t, tt.req.ID(), base.RequestID)

			got := s.Price(context.Background(), tt.req, tt.user, &tt.supply)
			assert.Equal(t, e.CalculatePrice(tt.req, tt.user, tt.supply), got.Price)
			assert.NotEqual(t, base.Price, got.Price)
			assert.Equal(t, 2, cache.Len())
		})
	}
}

func TestFareKey(t *testing.T) {
	req := downtownRequest()
	user := DefaultUserProfile()

	key := FareKey(req, user, 20)
	assert.True(t, strings.HasPrefix(key, req.ID()+":"))
	assert.Equal(t, key, FareKey(req, user, 20))
	assert.Equal(t, key, FareKey(req.WithFare(999), user, 20), "attached fare is not an input")

	changed := req
	changed.TrafficBlocks++
	assert.NotEqual(t, key, FareKey(changed, user, 20))
	assert.NotEqual(t, key, FareKey(req, UserProfile{LoyaltyTier: 4, PriceSensitivity: 1}, 20))
	assert.NotEqual(t, key, FareKey(req, user, 21))
}

func TestService_FallbackNotCached(t *testing.T) {
	e := newTestEngine(t, stubModel{err: errors.New("boom")})
	cache := NewLRUFareCache(16, time.Minute)
	s := NewService(e, cache, nil, nil, zap.NewNop())

	q := s.Price(context.Background(), downtownRequest(), DefaultUserProfile(), nil)
	assert.True(t, q.Fallback)
	assert.Equal(t, 40.0, q.Price)
	assert.Equal(t, 0, cache.Len())
}

func TestService_LedgerErrorKeepsFare(t *testing.T) {
	e := newTestEngine(t, stubModel{fare: 100})
	ledger := &fakeLedger{err: errors.New("db down")}
	s := NewService(e, nil, ledger, nil, zap.NewNop())

	q := s.Price(context.Background(), downtownRequest(), DefaultUserProfile(), nil)
	assert.Equal(t, 148.97, q.Price)
	assert.Len(t, ledger.quotes, 1)
}
