package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miqat-dev/miqat/internal/kv"
	"github.com/miqat-dev/miqat/internal/location"
	"github.com/miqat-dev/miqat/internal/model"
	"github.com/miqat-dev/miqat/internal/prayer"
	"github.com/miqat-dev/miqat/internal/settings"
)

// recordingSink captures the exact call sequence and tracks which ids are
// currently scheduled.
type recordingSink struct {
	mu     sync.Mutex
	calls  []string
	active map[model.ReminderID]Reminder
	perms  chan model.PermissionStatus
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		active: make(map[model.ReminderID]Reminder),
		perms:  make(chan model.PermissionStatus, 1),
	}
}

func (s *recordingSink) Schedule(_ context.Context, r Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "schedule:"+string(r.ID))
	s.active[r.ID] = r
	return nil
}

func (s *recordingSink) Cancel(_ context.Context, id model.ReminderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "cancel:"+string(id))
	delete(s.active, id)
	return nil
}

func (s *recordingSink) CancelAll(_ context.Context, ids []model.ReminderID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, "cancel_all")
	for _, id := range ids {
		delete(s.active, id)
	}
	return nil
}

func (s *recordingSink) Permissions() <-chan model.PermissionStatus { return s.perms }
func (s *recordingSink) Close()                                    {}

func (s *recordingSink) activeReminders() map[model.ReminderID]Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[model.ReminderID]Reminder, len(s.active))
	for k, v := range s.active {
		out[k] = v
	}
	return out
}

func (s *recordingSink) callLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *recordingSink) scheduleCount(id model.ReminderID) int {
	n := 0
	for _, c := range s.callLog() {
		if c == "schedule:"+string(id) {
			n++
		}
	}
	return n
}

// fixedCalculator returns a 05:00 Fajr / 12:00 Dhuhr day, or fails.
type fixedCalculator struct {
	err error
}

func (f *fixedCalculator) Compute(_ context.Context, day string, _, _ float64, _, _ string) (model.DailyTimes, error) {
	if f.err != nil {
		return model.DailyTimes{}, f.err
	}
	date, _ := time.ParseInLocation(model.DayFormat, day, time.UTC)
	fajr := date.Add(5 * time.Hour)
	sunrise := date.Add(6*time.Hour + 30*time.Minute)
	dhuhr := date.Add(12 * time.Hour)
	asr := date.Add(15*time.Hour + 30*time.Minute)
	maghrib := date.Add(18*time.Hour + 45*time.Minute)
	isha := date.Add(20 * time.Hour)
	return model.DailyTimes{
		Day: day, Fajr: &fajr, Sunrise: &sunrise, Dhuhr: &dhuhr,
		Asr: &asr, Maghrib: &maghrib, Isha: &isha,
	}, nil
}

func newTestOrchestrator(t *testing.T, calc prayer.Calculator) (*Orchestrator, *recordingSink, *settings.Store) {
	t.Helper()
	store := settings.NewStore(context.Background(), kv.NewMemoryStore())
	t.Cleanup(store.Close)
	cache := prayer.NewScheduleCache(kv.NewMemoryStore(), calc, 24*time.Hour)
	sink := newRecordingSink()
	src := location.NewStaticSource(21.4225, 39.8262)
	o := NewOrchestrator(cache, store, sink, src, time.UTC)
	t.Cleanup(o.Close)
	return o, sink, store
}

func TestReschedule_SchedulesEnabledPrayers(t *testing.T) {
	o, sink, _ := newTestOrchestrator(t, &fixedCalculator{})

	require.NoError(t, o.Reschedule(context.Background()))

	active := sink.activeReminders()
	// defaults enable everything except sunrise
	assert.Len(t, active, 5)
	assert.NotContains(t, active, model.ReminderSunrise)

	// fixed sound mapping
	assert.Equal(t, model.SoundTone, active[model.ReminderFajr].Sound)
	assert.Equal(t, model.SoundAdhan, active[model.ReminderDhuhr].Sound)
	assert.Equal(t, model.SoundAdhan, active[model.ReminderIsha].Sound)
}

func TestReschedule_AdhanRemindersCarrySelectedRecording(t *testing.T) {
	o, sink, store := newTestOrchestrator(t, &fixedCalculator{})
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, func(s *model.Settings) {
		s.AdhanSound = "adhan_madinah"
	}, true))
	require.NoError(t, o.Reschedule(ctx))

	active := sink.activeReminders()
	for _, id := range []model.ReminderID{model.ReminderDhuhr, model.ReminderAsr, model.ReminderMaghrib, model.ReminderIsha} {
		assert.Equal(t, "adhan_madinah", active[id].SoundName)
	}
	// tone reminders carry no recording name
	assert.Empty(t, active[model.ReminderFajr].SoundName)
}

func TestReschedule_AppliesOffset(t *testing.T) {
	o, sink, store := newTestOrchestrator(t, &fixedCalculator{})
	ctx := context.Background()

	require.NoError(t, store.Update(ctx, func(s *model.Settings) {
		s.OffsetMinutes[model.PrayerFajr] = 5
	}, true))
	require.NoError(t, o.Reschedule(ctx))

	fajr := sink.activeReminders()[model.ReminderFajr]
	assert.Equal(t, "05:05", fajr.At.UTC().Format("15:04"))
}

func TestReschedule_Idempotent(t *testing.T) {
	o, sink, _ := newTestOrchestrator(t, &fixedCalculator{})
	ctx := context.Background()

	require.NoError(t, o.Reschedule(ctx))
	require.NoError(t, o.Reschedule(ctx))

	// two passes, each cancel-then-reschedule: one active reminder per
	// enabled prayer, no duplicates
	assert.Len(t, sink.activeReminders(), 5)
	assert.Equal(t, 2, sink.scheduleCount(model.ReminderFajr))

	calls := sink.callLog()
	require.NotEmpty(t, calls)
	assert.Equal(t, "cancel_all", calls[0])
	// the second pass starts with its own cancel_all
	assert.Equal(t, "cancel_all", calls[6])
}

func TestReschedule_DisabledPrayerHasNoReminder(t *testing.T) {
	o, sink, store := newTestOrchestrator(t, &fixedCalculator{})
	ctx := context.Background()

	require.NoError(t, o.Reschedule(ctx))
	require.Contains(t, sink.activeReminders(), model.ReminderFajr)

	require.NoError(t, store.Update(ctx, func(s *model.Settings) {
		s.NotificationsEnabled[model.PrayerFajr] = false
	}, true))
	require.NoError(t, o.Reschedule(ctx))

	assert.NotContains(t, sink.activeReminders(), model.ReminderFajr)
}

func TestReschedule_AbortsWholePassOnCalculatorFailure(t *testing.T) {
	calc := &fixedCalculator{}
	o, sink, _ := newTestOrchestrator(t, calc)
	ctx := context.Background()

	require.NoError(t, o.Reschedule(ctx))
	before := sink.activeReminders()
	require.Len(t, before, 5)

	// fresh orchestrator state but failing calculator and an empty cache
	failing := &fixedCalculator{err: errors.New("upstream down")}
	o2, sink2, _ := newTestOrchestrator(t, failing)
	require.Error(t, o2.Reschedule(ctx))

	// nothing was cancelled or scheduled on the failing pass
	assert.Empty(t, sink2.callLog())
}

func TestReschedule_SkipsNilSlots(t *testing.T) {
	calc := &partialCalculator{}
	o, sink, _ := newTestOrchestrator(t, calc)

	require.NoError(t, o.Reschedule(context.Background()))

	active := sink.activeReminders()
	assert.Contains(t, active, model.ReminderFajr)
	assert.NotContains(t, active, model.ReminderIsha)
}

// partialCalculator leaves every slot after Fajr nil.
type partialCalculator struct{}

func (p *partialCalculator) Compute(_ context.Context, day string, _, _ float64, _, _ string) (model.DailyTimes, error) {
	date, _ := time.ParseInLocation(model.DayFormat, day, time.UTC)
	fajr := date.Add(5 * time.Hour)
	return model.DailyTimes{Day: day, Fajr: &fajr}, nil
}

func TestRemembrance_ReArmsAndStops(t *testing.T) {
	o, sink, _ := newTestOrchestrator(t, &fixedCalculator{})

	o.StartRemembrance(20 * time.Millisecond)
	time.Sleep(70 * time.Millisecond)
	o.StopRemembrance()

	// initial occurrence plus at least two re-arms
	fired := sink.scheduleCount(model.ReminderRemembrance)
	assert.GreaterOrEqual(t, fired, 3)
	assert.NotContains(t, sink.activeReminders(), model.ReminderRemembrance)

	// no further fires after stop
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, fired, sink.scheduleCount(model.ReminderRemembrance))
}

func TestRemembrance_RestartReplacesCycle(t *testing.T) {
	o, sink, _ := newTestOrchestrator(t, &fixedCalculator{})

	o.StartRemembrance(time.Hour)
	o.StartRemembrance(time.Hour)
	o.StopRemembrance()

	// each start schedules exactly one pending occurrence
	assert.Equal(t, 2, sink.scheduleCount(model.ReminderRemembrance))
	assert.NotContains(t, sink.activeReminders(), model.ReminderRemembrance)
}
