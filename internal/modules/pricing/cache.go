// README: Fare cache keyed by request id plus an input digest so only a true repeat sees the stored fare.
package pricing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
)

const fareKeyPrefix = "pricing:fare:"

// FareCache stores computed quotes for a bounded time.
type FareCache interface {
	Get(ctx context.Context, key string) (Quote, bool, error)
	Set(ctx context.Context, key string, q Quote) error
}

// fareInputs is everything the engine reads for one quote. Fare is excluded by
// its json tag.
type fareInputs struct {
	Request TripRequest `json:"r"`
	User    UserProfile `json:"u"`
	Supply  int         `json:"s"`
}

// FareKey is "<request_id>:<digest>" where the digest covers the trip fields,
// the rider profile and the resolved supply.
func FareKey(req TripRequest, user UserProfile, supply int) string {
	b, _ := json.Marshal(fareInputs{Request: req, User: user, Supply: supply})
	sum := sha256.Sum256(b)
	return req.ID() + ":" + hex.EncodeToString(sum[:12])
}

// LRUFareCache is the in-process cache used when Redis is not configured.
type LRUFareCache struct {
	lru *expirable.LRU[string, Quote]
}

func NewLRUFareCache(size int, ttl time.Duration) *LRUFareCache {
	if size <= 0 {
		size = 1024
	}
	return &LRUFareCache{lru: expirable.NewLRU[string, Quote](size, nil, ttl)}
}

func (c *LRUFareCache) Get(_ context.Context, key string) (Quote, bool, error) {
	q, ok := c.lru.Get(key)
	return q, ok, nil
}

func (c *LRUFareCache) Set(_ context.Context, key string, q Quote) error {
	c.lru.Add(key, q)
	return nil
}

func (c *LRUFareCache) Len() int { return c.lru.Len() }

// RedisFareCache shares quotes across API replicas.
type RedisFareCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisFareCache(rdb *redis.Client, ttl time.Duration) *RedisFareCache {
	return &RedisFareCache{redis: rdb, ttl: ttl}
}

func (c *RedisFareCache) Get(ctx context.Context, key string) (Quote, bool, error) {
	val, err := c.redis.Get(ctx, fareKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return Quote{}, false, nil
	}
	if err != nil {
		return Quote{}, false, eris.Wrap(err, "pricing: cache get")
	}
	var q Quote
	if err := json.Unmarshal(val, &q); err != nil {
		return Quote{}, false, eris.Wrap(err, "pricing: cache decode")
	}
	return q, true, nil
}

func (c *RedisFareCache) Set(ctx context.Context, key string, q Quote) error {
	b, err := json.Marshal(q)
	if err != nil {
		return eris.Wrap(err, "pricing: cache encode")
	}
	return eris.Wrap(c.redis.Set(ctx, fareKeyPrefix+key, b, c.ttl).Err(), "pricing: cache set")
}
