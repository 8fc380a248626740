package model

import "time"

// PrayerID identifies one of the six tracked daily prayer slots.
// Sunrise is not an obligatory prayer but is tracked for fasting purposes.
type PrayerID string

const (
	PrayerFajr    PrayerID = "fajr"
	PrayerSunrise PrayerID = "sunrise"
	PrayerDhuhr   PrayerID = "dhuhr"
	PrayerAsr     PrayerID = "asr"
	PrayerMaghrib PrayerID = "maghrib"
	PrayerIsha    PrayerID = "isha"
)

// PrayerOrder is the canonical chronological order of the daily slots.
var PrayerOrder = []PrayerID{
	PrayerFajr,
	PrayerSunrise,
	PrayerDhuhr,
	PrayerAsr,
	PrayerMaghrib,
	PrayerIsha,
}

// DisplayName returns the human-readable prayer name used in reminder titles.
func (p PrayerID) DisplayName() string {
	switch p {
	case PrayerFajr:
		return "Fajr"
	case PrayerSunrise:
		return "Sunrise"
	case PrayerDhuhr:
		return "Dhuhr"
	case PrayerAsr:
		return "Asr"
	case PrayerMaghrib:
		return "Maghrib"
	case PrayerIsha:
		return "Isha"
	}
	return string(p)
}

// Valid reports whether p is one of the defined slots.
func (p PrayerID) Valid() bool {
	for _, id := range PrayerOrder {
		if p == id {
			return true
		}
	}
	return false
}

// DailyTimes holds the computed prayer times for one calendar date.
// A nil slot means the calculation failed for that slot only; callers must
// treat nil as "do not schedule" rather than a zero time.
type DailyTimes struct {
	Day       string     `json:"day"` // YYYY-MM-DD in the app timezone
	HijriDate string     `json:"hijri_date"`
	Fajr      *time.Time `json:"fajr"`
	Sunrise   *time.Time `json:"sunrise"`
	Dhuhr     *time.Time `json:"dhuhr"`
	Asr       *time.Time `json:"asr"`
	Maghrib   *time.Time `json:"maghrib"`
	Isha      *time.Time `json:"isha"`
}

// At returns the computed time for the given slot, nil if that slot failed.
func (d DailyTimes) At(p PrayerID) *time.Time {
	switch p {
	case PrayerFajr:
		return d.Fajr
	case PrayerSunrise:
		return d.Sunrise
	case PrayerDhuhr:
		return d.Dhuhr
	case PrayerAsr:
		return d.Asr
	case PrayerMaghrib:
		return d.Maghrib
	case PrayerIsha:
		return d.Isha
	}
	return nil
}

// Current returns the slot whose time most recently passed as of now.
// ok is false before the first slot of the day or when every slot is nil.
func (d DailyTimes) Current(now time.Time) (PrayerID, bool) {
	var current PrayerID
	found := false
	for _, id := range PrayerOrder {
		t := d.At(id)
		if t == nil {
			continue
		}
		if !t.After(now) {
			current = id
			found = true
		}
	}
	return current, found
}

// NextAfter returns the first slot strictly after now. ok is false when all
// slots have passed (the caller falls back to the following day's first
// slot) or when every slot is nil.
func (d DailyTimes) NextAfter(now time.Time) (PrayerID, time.Time, bool) {
	for _, id := range PrayerOrder {
		t := d.At(id)
		if t == nil {
			continue
		}
		if t.After(now) {
			return id, *t, true
		}
	}
	return "", time.Time{}, false
}

// First returns the earliest non-nil slot of the day.
func (d DailyTimes) First() (PrayerID, time.Time, bool) {
	for _, id := range PrayerOrder {
		if t := d.At(id); t != nil {
			return id, *t, true
		}
	}
	return "", time.Time{}, false
}
