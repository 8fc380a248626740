package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/miqat-dev/miqat/internal/location"
	"github.com/miqat-dev/miqat/internal/model"
	"github.com/miqat-dev/miqat/internal/prayer"
	"github.com/miqat-dev/miqat/internal/settings"
)

// Orchestrator keeps the fixed reminder set in sync with the current
// configuration. It holds no persistent state of its own: every invocation
// re-derives the reminders from (settings, today's times) and replaces
// whatever was scheduled before. Cancel-then-reschedule makes repeated
// invocations idempotent.
type Orchestrator struct {
	cache    *prayer.ScheduleCache
	settings *settings.Store
	sink     Sink
	loc      location.Source
	timezone *time.Location

	mu  sync.Mutex // serializes reschedule passes
	now func() time.Time

	remMu       sync.Mutex
	remTimer    *time.Timer
	remInterval time.Duration
	remClosed   bool
}

func NewOrchestrator(cache *prayer.ScheduleCache, store *settings.Store, sink Sink, loc location.Source, tz *time.Location) *Orchestrator {
	return &Orchestrator{
		cache:    cache,
		settings: store,
		sink:     sink,
		loc:      loc,
		timezone: tz,
		now:      time.Now,
	}
}

// Reschedule recomputes today's times and re-issues every enabled prayer
// reminder. On calculator failure nothing is cancelled or scheduled: the
// previously issued reminders stay in place.
func (o *Orchestrator) Reschedule(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	cfg := o.settings.Current()
	lat, lon := location.Resolve(ctx, o.loc)
	now := o.now().In(o.timezone)
	day := now.Format(model.DayFormat)

	times, err := o.cache.GetOrCompute(ctx, day, lat, lon, cfg.CalculationMethod, cfg.LegalSchool)
	if err != nil {
		log.Error().Err(err).
			Str("day", day).
			Str("method", cfg.CalculationMethod).
			Str("school", cfg.LegalSchool).
			Interface("enabled", cfg.NotificationsEnabled).
			Msg("reschedule aborted, no partial state")
		return err
	}

	if err := o.sink.CancelAll(ctx, model.AllPrayerReminderIDs()); err != nil {
		return fmt.Errorf("cancel existing reminders: %w", err)
	}

	scheduled := 0
	for _, id := range model.PrayerOrder {
		if !cfg.NotificationsEnabled[id] {
			continue
		}
		base := times.At(id)
		if base == nil {
			log.Warn().Str("prayer", string(id)).Msg("slot unavailable, skipping reminder")
			continue
		}
		at := base.Add(time.Duration(cfg.OffsetMinutes[id]) * time.Minute)
		r := Reminder{
			ID:    model.PrayerReminderIDs[id],
			Title: id.DisplayName(),
			Body:  fmt.Sprintf("It's time for %s (%s)", id.DisplayName(), at.Format("15:04")),
			At:    at,
			Sound: model.SoundFor(id),
		}
		if r.Sound == model.SoundAdhan {
			r.SoundName = cfg.AdhanSound
		}
		if err := o.sink.Schedule(ctx, r); err != nil {
			return fmt.Errorf("schedule %s reminder: %w", id, err)
		}
		scheduled++
	}

	log.Info().Str("day", day).Int("scheduled", scheduled).Msg("reminders rescheduled")
	return nil
}

// StartRemembrance arms the periodic remembrance reminder: one shared id,
// next occurrence at now+interval, re-armed by the orchestrator itself on
// every fire since the interval is user-adjustable. Calling it again
// replaces the previous cycle.
func (o *Orchestrator) StartRemembrance(interval time.Duration) {
	o.remMu.Lock()
	defer o.remMu.Unlock()
	if o.remClosed {
		return
	}
	o.stopRemembranceLocked()
	o.remInterval = interval
	o.armRemembranceLocked()
}

func (o *Orchestrator) armRemembranceLocked() {
	at := o.now().Add(o.remInterval)
	r := Reminder{
		ID:    model.ReminderRemembrance,
		Title: "Remembrance",
		Body:  "Take a moment for dhikr",
		At:    at,
		Sound: model.SoundTone,
	}
	if err := o.sink.Schedule(context.Background(), r); err != nil {
		log.Error().Err(err).Msg("failed to schedule remembrance reminder")
	}
	o.remTimer = time.AfterFunc(o.remInterval, o.remembranceFired)
}

func (o *Orchestrator) remembranceFired() {
	o.remMu.Lock()
	defer o.remMu.Unlock()
	if o.remClosed || o.remTimer == nil {
		return
	}
	o.armRemembranceLocked()
}

// StopRemembrance cancels the timer and the scheduled sink reminder.
func (o *Orchestrator) StopRemembrance() {
	o.remMu.Lock()
	defer o.remMu.Unlock()
	o.stopRemembranceLocked()
	if err := o.sink.Cancel(context.Background(), model.ReminderRemembrance); err != nil {
		log.Error().Err(err).Msg("failed to cancel remembrance reminder")
	}
}

func (o *Orchestrator) stopRemembranceLocked() {
	if o.remTimer != nil {
		o.remTimer.Stop()
		o.remTimer = nil
	}
}

// Close stops the remembrance timer. Safe to call once at teardown; no
// callbacks run afterwards.
func (o *Orchestrator) Close() {
	o.remMu.Lock()
	defer o.remMu.Unlock()
	o.remClosed = true
	o.stopRemembranceLocked()
}
