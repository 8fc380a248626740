package model

import "time"

// DayFormat is the canonical key format for per-day records.
const DayFormat = "2006-01-02"

// CompletionRecord marks whether one prayer was completed on one day.
// Keyed by (PrayerID, Day); at most one row per pair.
type CompletionRecord struct {
	ID        string    `db:"id" json:"id"`
	PrayerID  PrayerID  `db:"prayer_id" json:"prayer_id"`
	Day       string    `db:"day" json:"day"` // YYYY-MM-DD
	Completed bool      `db:"completed" json:"completed"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Streak is the derived analytics pair over a prayer's completion history.
type Streak struct {
	Current int `json:"current"`
	Longest int `json:"longest"`
}
