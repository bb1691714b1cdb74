// README: Supply service tracks available drivers per zone and expires stale heartbeats.
package supply

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"fleetfare/internal/types"
)

var ErrUnknownZone = eris.New("supply: unknown zone")

// Registry is the storage behind the service.
type Registry interface {
	Heartbeat(ctx context.Context, driverID types.ID, zone types.Zone, at time.Time, ttl time.Duration) error
	Remove(ctx context.Context, driverID types.ID) error
	Count(ctx context.Context, zone types.Zone, cutoff time.Time) (int, error)
	DriverZone(ctx context.Context, driverID types.ID) (types.Zone, bool, error)
}

type Service struct {
	registry Registry
	ttl      time.Duration
	now      func() time.Time
	log      *zap.Logger
}

func NewService(registry Registry, ttl time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.L()
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &Service{registry: registry, ttl: ttl, now: time.Now, log: log}
}

// SetAvailability records a heartbeat when available, otherwise removes the driver.
func (s *Service) SetAvailability(ctx context.Context, driverID types.ID, zone types.Zone, available bool) error {
	if driverID == "" {
		return eris.New("supply: driver id is required")
	}
	if !available {
		return s.registry.Remove(ctx, driverID)
	}
	if !zone.Known() {
		return eris.Wrapf(ErrUnknownZone, "%q", zone)
	}
	return s.registry.Heartbeat(ctx, driverID, zone, s.now(), s.ttl)
}

// Count returns drivers with a heartbeat inside the TTL window.
func (s *Service) Count(ctx context.Context, zone types.Zone) (int, error) {
	if !zone.Known() {
		return 0, eris.Wrapf(ErrUnknownZone, "%q", zone)
	}
	return s.registry.Count(ctx, zone, s.now().Add(-s.ttl))
}

func (s *Service) DriverZone(ctx context.Context, driverID types.ID) (types.Zone, bool, error) {
	return s.registry.DriverZone(ctx, driverID)
}

// Counts returns the live count for every known zone.
func (s *Service) Counts(ctx context.Context) (map[types.Zone]int, error) {
	out := make(map[types.Zone]int, len(types.Zones))
	for _, z := range types.Zones {
		n, err := s.Count(ctx, z)
		if err != nil {
			return nil, err
		}
		out[z] = n
	}
	return out, nil
}

// RunSweeper trims stale heartbeats every interval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			counts, err := s.Counts(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.log.Warn("supply sweep failed", zap.Error(err))
				continue
			}
			s.log.Debug("supply swept",
				zap.Int("downtown", counts[types.ZoneDowntown]),
				zap.Int("suburb", counts[types.ZoneSuburb]),
				zap.Int("airport", counts[types.ZoneAirport]),
			)
		}
	}
}
