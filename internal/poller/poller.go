// Package poller maintains the continuously refreshed "current and next
// prayer" read model for display.
package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/miqat-dev/miqat/internal/location"
	"github.com/miqat-dev/miqat/internal/model"
	"github.com/miqat-dev/miqat/internal/prayer"
	"github.com/miqat-dev/miqat/internal/settings"
)

// State is the published triple. Current is empty before the first prayer
// of the day; Next falls back to the following day's first slot once all
// of today's have passed.
type State struct {
	Current  model.PrayerID `json:"current_prayer"`
	Next     model.PrayerID `json:"next_prayer"`
	NextTime time.Time      `json:"next_prayer_time"`
}

func (s State) equal(other State) bool {
	return s.Current == other.Current &&
		s.Next == other.Next &&
		s.NextTime.Equal(other.NextTime)
}

// Poller recomputes the state on a fixed one-minute tick and notifies the
// observer only when the value actually changed.
type Poller struct {
	cache    *prayer.ScheduleCache
	settings *settings.Store
	loc      location.Source
	timezone *time.Location
	onChange func(State)

	cron     *cron.Cron
	inFlight atomic.Bool
	now      func() time.Time

	mu       sync.RWMutex
	state    State
	hasState bool
}

// New creates a Poller; onChange may be nil when only Current() polling is
// needed.
func New(cache *prayer.ScheduleCache, cfg *settings.Store, loc location.Source, tz *time.Location, onChange func(State)) *Poller {
	return &Poller{
		cache:    cache,
		settings: cfg,
		loc:      loc,
		timezone: tz,
		onChange: onChange,
		cron:     cron.New(cron.WithLocation(tz)),
		now:      time.Now,
	}
}

// Start refreshes once immediately, then every minute.
func (p *Poller) Start() error {
	if _, err := p.cron.AddFunc("* * * * *", p.tick); err != nil {
		return err
	}
	p.cron.Start()
	p.tick()
	log.Info().Msg("prayer state poller started")
	return nil
}

// Stop halts the tick and waits for a running refresh to finish.
func (p *Poller) Stop() {
	ctx := p.cron.Stop()
	<-ctx.Done()
	log.Info().Msg("prayer state poller stopped")
}

// Current returns the last published state; ok is false before the first
// successful refresh.
func (p *Poller) Current() (State, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state, p.hasState
}

// tick runs one refresh unless another is already in flight.
func (p *Poller) tick() {
	if !p.inFlight.CompareAndSwap(false, true) {
		return
	}
	defer p.inFlight.Store(false)

	next, err := p.refresh(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("prayer state refresh failed")
		return
	}

	p.mu.Lock()
	changed := !p.hasState || !p.state.equal(next)
	p.state = next
	p.hasState = true
	p.mu.Unlock()

	if changed && p.onChange != nil {
		p.onChange(next)
	}
}

func (p *Poller) refresh(ctx context.Context) (State, error) {
	cfg := p.settings.Current()
	lat, lon := location.Resolve(ctx, p.loc)
	now := p.now().In(p.timezone)
	day := now.Format(model.DayFormat)

	times, err := p.cache.GetOrCompute(ctx, day, lat, lon, cfg.CalculationMethod, cfg.LegalSchool)
	if err != nil {
		return State{}, err
	}

	var st State
	if current, ok := times.Current(now); ok {
		st.Current = current
	}

	if next, at, ok := times.NextAfter(now); ok {
		st.Next = next
		st.NextTime = at
		return st, nil
	}

	// all of today's slots have passed (or were nil): fall back to
	// tomorrow's first slot
	tomorrow := now.AddDate(0, 0, 1).Format(model.DayFormat)
	nextTimes, err := p.cache.GetOrCompute(ctx, tomorrow, lat, lon, cfg.CalculationMethod, cfg.LegalSchool)
	if err != nil {
		return State{}, err
	}
	if first, at, ok := nextTimes.First(); ok {
		st.Next = first
		st.NextTime = at
	}
	// the distinct all-nil branch: both days empty leaves Next unset,
	// which the UI renders as "unavailable"
	return st, nil
}
