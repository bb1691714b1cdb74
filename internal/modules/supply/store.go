// README: Supply store backed by Redis sorted sets, one per zone, scored by heartbeat time.
package supply

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"fleetfare/internal/types"
)

const (
	zoneKeyPrefix   = "supply:zone:%s"
	driverKeyPrefix = "supply:driver:%s"
)

type Store struct {
	redis *redis.Client
}

func NewStore(redis *redis.Client) *Store {
	return &Store{redis: redis}
}

// Heartbeat moves the driver into zone, dropping any membership elsewhere.
func (s *Store) Heartbeat(ctx context.Context, driverID types.ID, zone types.Zone, at time.Time, ttl time.Duration) error {
	pipe := s.redis.TxPipeline()
	for _, z := range types.Zones {
		if z != zone {
			pipe.ZRem(ctx, zoneKey(z), string(driverID))
		}
	}
	pipe.ZAdd(ctx, zoneKey(zone), redis.Z{Score: float64(at.Unix()), Member: string(driverID)})
	pipe.Set(ctx, driverKey(driverID), string(zone), ttl)
	_, err := pipe.Exec(ctx)
	return eris.Wrapf(err, "supply: heartbeat %s", driverID)
}

// Remove takes the driver out of every zone.
func (s *Store) Remove(ctx context.Context, driverID types.ID) error {
	pipe := s.redis.TxPipeline()
	for _, z := range types.Zones {
		pipe.ZRem(ctx, zoneKey(z), string(driverID))
	}
	pipe.Del(ctx, driverKey(driverID))
	_, err := pipe.Exec(ctx)
	return eris.Wrapf(err, "supply: remove %s", driverID)
}

// Count trims heartbeats older than cutoff and returns the remaining drivers.
func (s *Store) Count(ctx context.Context, zone types.Zone, cutoff time.Time) (int, error) {
	pipe := s.redis.TxPipeline()
	pipe.ZRemRangeByScore(ctx, zoneKey(zone), "-inf", "("+strconv.FormatInt(cutoff.Unix(), 10))
	card := pipe.ZCard(ctx, zoneKey(zone))
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, eris.Wrapf(err, "supply: count %s", zone)
	}
	return int(card.Val()), nil
}

// DriverZone returns the zone of the driver's last heartbeat.
func (s *Store) DriverZone(ctx context.Context, driverID types.ID) (types.Zone, bool, error) {
	val, err := s.redis.Get(ctx, driverKey(driverID)).Result()
	if err == redis.Nil {
		return types.ZoneUnknown, false, nil
	}
	if err != nil {
		return types.ZoneUnknown, false, eris.Wrapf(err, "supply: driver zone %s", driverID)
	}
	return types.ParseZone(val), true, nil
}

func zoneKey(z types.Zone) string {
	return fmt.Sprintf(zoneKeyPrefix, z.String())
}

func driverKey(id types.ID) string {
	return fmt.Sprintf(driverKeyPrefix, string(id))
}
