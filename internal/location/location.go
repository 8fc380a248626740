// Package location provides the coordinate source for prayer-time
// computation with a documented fallback so computation never blocks on a
// location failure.
package location

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/miqat-dev/miqat/internal/errs"
)

// Kaaba coordinates, the fallback when the device's location is unknown.
const (
	KaabaLatitude  = 21.4225
	KaabaLongitude = 39.8262
)

// Source yields the device's last reported coordinates.
type Source interface {
	Coordinates(ctx context.Context) (lat, lon float64, err error)
}

// StaticSource holds coordinates pushed by the device through the API.
// Reports an error until the first update unless seeded from config.
type StaticSource struct {
	mu     sync.RWMutex
	lat    float64
	lon    float64
	seeded bool
}

var _ Source = (*StaticSource)(nil)

// NewStaticSource seeds the source; (0, 0) means "unset".
func NewStaticSource(lat, lon float64) *StaticSource {
	s := &StaticSource{}
	if lat != 0 || lon != 0 {
		s.lat, s.lon, s.seeded = lat, lon, true
	}
	return s
}

func (s *StaticSource) Coordinates(context.Context) (float64, float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.seeded {
		return 0, 0, errs.LocationService("coordinates", nil)
	}
	return s.lat, s.lon, nil
}

// Update records the device's current position.
func (s *StaticSource) Update(lat, lon float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lat, s.lon, s.seeded = lat, lon, true
}

// Resolve returns the source's coordinates, substituting the Kaaba when the
// source fails.
func Resolve(ctx context.Context, src Source) (float64, float64) {
	lat, lon, err := src.Coordinates(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("location unavailable, using Kaaba fallback")
		return KaabaLatitude, KaabaLongitude
	}
	return lat, lon
}
