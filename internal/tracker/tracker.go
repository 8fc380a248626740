// Package tracker records per-day prayer completion and derives streak
// analytics over the history.
package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/miqat-dev/miqat/internal/db"
	"github.com/miqat-dev/miqat/internal/location"
	"github.com/miqat-dev/miqat/internal/model"
	"github.com/miqat-dev/miqat/internal/prayer"
	"github.com/miqat-dev/miqat/internal/settings"
)

// ErrNotDue is the user-facing refusal when a prayer is marked before its
// scheduled time has passed.
var ErrNotDue = errors.New("prayer time has not passed yet")

// streakHorizonDays bounds how much history feeds the streak computation.
const streakHorizonDays = 365

type Tracker struct {
	store    db.Store
	cache    *prayer.ScheduleCache
	settings *settings.Store
	loc      location.Source
	timezone *time.Location
	now      func() time.Time
}

func New(store db.Store, cache *prayer.ScheduleCache, cfg *settings.Store, loc location.Source, tz *time.Location) *Tracker {
	return &Tracker{
		store:    store,
		cache:    cache,
		settings: cfg,
		loc:      loc,
		timezone: tz,
		now:      time.Now,
	}
}

// MarkCompleted records the prayer as completed for the given day. Marking
// is refused with ErrNotDue while the prayer's scheduled time for that day
// is still in the future; the guard lives here, at the edit boundary, not
// in the record type.
func (t *Tracker) MarkCompleted(ctx context.Context, prayerID model.PrayerID, day string) (model.CompletionRecord, error) {
	due, err := t.scheduledTime(ctx, prayerID, day)
	if err != nil {
		return model.CompletionRecord{}, err
	}
	if due != nil && t.now().Before(*due) {
		log.Debug().Str("prayer", string(prayerID)).Str("day", day).Time("due", *due).Msg("completion refused, not due")
		return model.CompletionRecord{}, ErrNotDue
	}
	return t.store.UpsertCompletion(ctx, prayerID, day, true)
}

// Unmark removes a previously completed entry. Always permitted.
func (t *Tracker) Unmark(ctx context.Context, prayerID model.PrayerID, day string) error {
	return t.store.DeleteCompletion(ctx, prayerID, day)
}

// IsCompletedToday reports whether the prayer has a completed record for
// the current day.
func (t *Tracker) IsCompletedToday(ctx context.Context, prayerID model.PrayerID) (bool, error) {
	day := t.now().In(t.timezone).Format(model.DayFormat)
	rec, err := t.store.GetCompletion(ctx, prayerID, day)
	if err != nil {
		return false, err
	}
	return rec != nil && rec.Completed, nil
}

// Streak loads the prayer's recent history and computes the streak pair.
func (t *Tracker) Streak(ctx context.Context, prayerID model.PrayerID) (model.Streak, error) {
	since := t.now().In(t.timezone).AddDate(0, 0, -streakHorizonDays).Format(model.DayFormat)
	records, err := t.store.ListCompletions(ctx, prayerID, since)
	if err != nil {
		return model.Streak{}, err
	}
	return ComputeStreak(records), nil
}

// scheduledTime resolves the prayer's time for the day through the cache;
// a nil result means the slot could not be computed and the guard is
// skipped.
func (t *Tracker) scheduledTime(ctx context.Context, prayerID model.PrayerID, day string) (*time.Time, error) {
	cfg := t.settings.Current()
	lat, lon := location.Resolve(ctx, t.loc)
	times, err := t.cache.GetOrCompute(ctx, day, lat, lon, cfg.CalculationMethod, cfg.LegalSchool)
	if err != nil {
		return nil, err
	}
	return times.At(prayerID), nil
}

// ComputeStreak derives {current, longest} from records ordered oldest to
// newest. Current counts consecutive completed days backwards from the
// most recent record, stopping at the first gap or incomplete day; longest
// is the maximum such run anywhere in the history. An empty history yields
// zeros.
func ComputeStreak(records []model.CompletionRecord) model.Streak {
	if len(records) == 0 {
		return model.Streak{}
	}

	current := 0
	for i := len(records) - 1; i >= 0; i-- {
		if !records[i].Completed {
			break
		}
		if current > 0 && !consecutiveDays(records[i].Day, records[i+1].Day) {
			break
		}
		current++
	}

	longest := 0
	run := 0
	for i, rec := range records {
		if !rec.Completed {
			run = 0
			continue
		}
		if run > 0 && !consecutiveDays(records[i-1].Day, rec.Day) {
			run = 0
		}
		run++
		if run > longest {
			longest = run
		}
	}

	return model.Streak{Current: current, Longest: longest}
}

// consecutiveDays reports whether later is exactly the day after earlier.
func consecutiveDays(earlier, later string) bool {
	a, errA := time.Parse(model.DayFormat, earlier)
	b, errB := time.Parse(model.DayFormat, later)
	if errA != nil || errB != nil {
		return false
	}
	return b.Sub(a) == 24*time.Hour
}
