package model

import "time"

// CacheEntry is one day's computed prayer times together with the request
// parameters that produced it. Entries are replaced wholesale on refresh,
// never mutated in place.
type CacheEntry struct {
	PrayerTimes DailyTimes `json:"prayer_times"`
	Latitude    float64    `json:"latitude"`
	Longitude   float64    `json:"longitude"`
	Method      string     `json:"method"`
	LegalSchool string     `json:"legal_school"`
	CachedAt    time.Time  `json:"cached_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
}
