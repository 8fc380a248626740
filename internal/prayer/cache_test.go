package prayer

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miqat-dev/miqat/internal/errs"
	"github.com/miqat-dev/miqat/internal/kv"
	"github.com/miqat-dev/miqat/internal/model"
)

type fakeCalculator struct {
	calls int32
	delay time.Duration
	err   error
	tz    *time.Location
}

func (f *fakeCalculator) Compute(_ context.Context, day string, lat, lon float64, method, school string) (model.DailyTimes, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return model.DailyTimes{}, f.err
	}
	date, _ := time.ParseInLocation(model.DayFormat, day, f.tz)
	fajr := date.Add(5 * time.Hour)
	dhuhr := date.Add(12 * time.Hour)
	return model.DailyTimes{Day: day, Fajr: &fajr, Dhuhr: &dhuhr}, nil
}

func newTestCache(t *testing.T, calc Calculator) (*ScheduleCache, *kv.MemoryStore) {
	t.Helper()
	store := kv.NewMemoryStore()
	return NewScheduleCache(store, calc, 24*time.Hour), store
}

func TestGetOrCompute_HitSkipsCalculator(t *testing.T) {
	calc := &fakeCalculator{tz: time.UTC}
	cache, _ := newTestCache(t, calc)
	ctx := context.Background()

	first, err := cache.GetOrCompute(ctx, "2026-08-25", 21.4225, 39.8262, "MuslimWorldLeague", "shafi")
	require.NoError(t, err)
	require.NotNil(t, first.Fajr)

	second, err := cache.GetOrCompute(ctx, "2026-08-25", 21.4229, 39.8260, "MuslimWorldLeague", "shafi")
	require.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calc.calls))
	assert.Equal(t, first.Fajr.Unix(), second.Fajr.Unix())
}

func TestGetOrCompute_RecomputesOnDrift(t *testing.T) {
	calc := &fakeCalculator{tz: time.UTC}
	cache, _ := newTestCache(t, calc)
	ctx := context.Background()

	_, err := cache.GetOrCompute(ctx, "2026-08-25", 21.4225, 39.8262, "MuslimWorldLeague", "shafi")
	require.NoError(t, err)

	_, err = cache.GetOrCompute(ctx, "2026-08-25", 21.4245, 39.8262, "MuslimWorldLeague", "shafi")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calc.calls))
}

func TestGetOrCompute_RecomputesOnExpiry(t *testing.T) {
	calc := &fakeCalculator{tz: time.UTC}
	cache, _ := newTestCache(t, calc)
	ctx := context.Background()

	_, err := cache.GetOrCompute(ctx, "2026-08-25", 21.4225, 39.8262, "MuslimWorldLeague", "shafi")
	require.NoError(t, err)

	// jump the cache's clock past the entry's expiry
	cache.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	_, err = cache.GetOrCompute(ctx, "2026-08-25", 21.4225, 39.8262, "MuslimWorldLeague", "shafi")
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&calc.calls))
}

func TestGetOrCompute_CalculatorFailure(t *testing.T) {
	calc := &fakeCalculator{tz: time.UTC, err: errors.New("upstream down")}
	cache, _ := newTestCache(t, calc)

	_, err := cache.GetOrCompute(context.Background(), "2026-08-25", 0, 0, "MuslimWorldLeague", "shafi")
	require.Error(t, err)

	var pde *errs.PrayerDataError
	assert.True(t, errors.As(err, &pde))
	// exactly one attempt, no internal retry
	assert.Equal(t, int32(1), atomic.LoadInt32(&calc.calls))
}

func TestGetOrCompute_MalformedEntryIsAMiss(t *testing.T) {
	calc := &fakeCalculator{tz: time.UTC}
	cache, store := newTestCache(t, calc)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "prayer:times:2026-08-25", []byte("{not json"), 0))

	times, err := cache.GetOrCompute(ctx, "2026-08-25", 21.4225, 39.8262, "MuslimWorldLeague", "shafi")
	require.NoError(t, err)
	assert.NotNil(t, times.Fajr)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calc.calls))
}

func TestGetOrCompute_SingleFlight(t *testing.T) {
	calc := &fakeCalculator{tz: time.UTC, delay: 50 * time.Millisecond}
	cache, _ := newTestCache(t, calc)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.GetOrCompute(context.Background(), "2026-08-25", 21.4225, 39.8262, "MuslimWorldLeague", "shafi")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calc.calls))
}
