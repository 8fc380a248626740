package prayer

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/miqat-dev/miqat/internal/errs"
	"github.com/miqat-dev/miqat/internal/kv"
	"github.com/miqat-dev/miqat/internal/model"
)

const cacheKeyPrefix = "prayer:times:"

// ScheduleCache answers "prayer times for this day at this location" from
// the key-value store, recomputing through the external calculator only
// when the stored entry is missing, stale, or was computed for different
// parameters. Entries are overwritten wholesale, never merged.
type ScheduleCache struct {
	store kv.Store
	calc  Calculator
	ttl   time.Duration
	group singleflight.Group
	now   func() time.Time
}

func NewScheduleCache(store kv.Store, calc Calculator, ttl time.Duration) *ScheduleCache {
	return &ScheduleCache{
		store: store,
		calc:  calc,
		ttl:   ttl,
		now:   time.Now,
	}
}

// GetOrCompute returns the cached times for day when the stored entry
// matches the request and has not expired, otherwise recomputes, persists
// the new entry and returns it. Concurrent misses for the same day share a
// single calculator call. Calculator failures surface as PrayerDataError;
// retrying is the caller's decision.
func (c *ScheduleCache) GetOrCompute(ctx context.Context, day string, lat, lon float64, method, legalSchool string) (model.DailyTimes, error) {
	key := cacheKeyPrefix + day

	if entry, ok := c.lookup(ctx, key); ok {
		if Matches(entry, lat, lon, method, legalSchool) && Valid(entry, c.now()) {
			return entry.PrayerTimes, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// re-check under the flight: another caller may have refreshed
		// the entry while this one waited
		if entry, ok := c.lookup(ctx, key); ok {
			if Matches(entry, lat, lon, method, legalSchool) && Valid(entry, c.now()) {
				return entry.PrayerTimes, nil
			}
		}
		return c.compute(ctx, key, day, lat, lon, method, legalSchool)
	})
	if err != nil {
		return model.DailyTimes{}, err
	}
	return v.(model.DailyTimes), nil
}

// lookup reads and decodes the stored entry. Malformed data is treated as
// a miss: it gets logged and overwritten by the next compute.
func (c *ScheduleCache) lookup(ctx context.Context, key string) (model.CacheEntry, bool) {
	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if err != kv.ErrNotFound {
			log.Error().Err(err).Str("key", key).Msg("cache read failed")
		}
		return model.CacheEntry{}, false
	}
	var entry model.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("malformed cache entry, recomputing")
		return model.CacheEntry{}, false
	}
	return entry, true
}

func (c *ScheduleCache) compute(ctx context.Context, key, day string, lat, lon float64, method, legalSchool string) (model.DailyTimes, error) {
	times, err := c.calc.Compute(ctx, day, lat, lon, method, legalSchool)
	if err != nil {
		return model.DailyTimes{}, errs.PrayerData("compute "+day, err)
	}

	now := c.now()
	entry := model.CacheEntry{
		PrayerTimes: times,
		Latitude:    lat,
		Longitude:   lon,
		Method:      method,
		LegalSchool: legalSchool,
		CachedAt:    now,
		ExpiresAt:   now.Add(c.ttl),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		return model.DailyTimes{}, errs.PrayerData("encode entry", err)
	}
	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		// the computed result is still good; serve it and let the next
		// request retry the write
		log.Error().Err(err).Str("key", key).Msg("cache write failed")
	}
	return times, nil
}
