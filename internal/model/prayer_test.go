package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func timesFor(day time.Time) DailyTimes {
	fajr := day.Add(5 * time.Hour)
	dhuhr := day.Add(12 * time.Hour)
	isha := day.Add(20 * time.Hour)
	return DailyTimes{Day: day.Format(DayFormat), Fajr: &fajr, Dhuhr: &dhuhr, Isha: &isha}
}

func TestNextAfter_WalksOrderedSlots(t *testing.T) {
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	d := timesFor(day)

	id, at, ok := d.NextAfter(day.Add(6 * time.Hour))
	assert.True(t, ok)
	assert.Equal(t, PrayerDhuhr, id)
	assert.Equal(t, "12:00", at.Format("15:04"))

	// nil slots (sunrise, asr, maghrib here) are skipped, not treated as
	// zero times
	id, _, ok = d.NextAfter(day.Add(13 * time.Hour))
	assert.True(t, ok)
	assert.Equal(t, PrayerIsha, id)
}

func TestNextAfter_AllPassed(t *testing.T) {
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	d := timesFor(day)

	_, _, ok := d.NextAfter(day.Add(23 * time.Hour))
	assert.False(t, ok)
}

func TestNextAfter_AllNil(t *testing.T) {
	d := DailyTimes{Day: "2026-08-25"}

	_, _, ok := d.NextAfter(time.Now())
	assert.False(t, ok)
	_, ok = d.Current(time.Now())
	assert.False(t, ok)
}

func TestCurrent_MostRecentlyPassed(t *testing.T) {
	day := time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC)
	d := timesFor(day)

	_, ok := d.Current(day.Add(4 * time.Hour))
	assert.False(t, ok, "before fajr there is no current prayer")

	id, ok := d.Current(day.Add(15 * time.Hour))
	assert.True(t, ok)
	assert.Equal(t, PrayerDhuhr, id)
}

func TestSoundFor_FixedMapping(t *testing.T) {
	adhan := 0
	for _, id := range PrayerOrder {
		if SoundFor(id) == SoundAdhan {
			adhan++
		}
	}
	assert.Equal(t, 4, adhan)
	assert.Equal(t, SoundTone, SoundFor(PrayerFajr))
	assert.Equal(t, SoundTone, SoundFor(PrayerSunrise))
}
