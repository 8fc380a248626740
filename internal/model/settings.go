package model

// PermissionStatus mirrors the device's notification-permission state as
// reported over the permission stream.
type PermissionStatus string

const (
	PermissionUnknown PermissionStatus = "unknown"
	PermissionGranted PermissionStatus = "granted"
	PermissionDenied  PermissionStatus = "denied"
)

// Settings is the single persisted configuration blob.
type Settings struct {
	CalculationMethod    string            `json:"calculation_method"`
	LegalSchool          string            `json:"legal_school"`
	OffsetMinutes        map[PrayerID]int  `json:"offset_minutes"`
	NotificationsEnabled map[PrayerID]bool `json:"notifications_enabled"`
	ReminderIntervalHrs  int               `json:"reminder_interval_hours"`
	AdhanSound           string            `json:"adhan_sound"`
	RemembranceEnabled   bool              `json:"remembrance_enabled"`
	PermissionStatus     PermissionStatus  `json:"permission_status"`
}

// DefaultSettings returns the configuration used on first run and after a
// corrupt settings blob is discarded. Offsets are bounded to ±30 minutes by
// convention at the API edge, not here.
func DefaultSettings() Settings {
	offsets := make(map[PrayerID]int, len(PrayerOrder))
	enabled := make(map[PrayerID]bool, len(PrayerOrder))
	for _, id := range PrayerOrder {
		offsets[id] = 0
		enabled[id] = id != PrayerSunrise
	}
	return Settings{
		CalculationMethod:    "MuslimWorldLeague",
		LegalSchool:          "shafi",
		OffsetMinutes:        offsets,
		NotificationsEnabled: enabled,
		ReminderIntervalHrs:  3,
		AdhanSound:           "adhan_makkah",
		RemembranceEnabled:   false,
		PermissionStatus:     PermissionUnknown,
	}
}

// Normalize fills missing per-prayer entries so both maps always carry
// exactly one entry per defined PrayerID, regardless of what was persisted.
func (s *Settings) Normalize() {
	defaults := DefaultSettings()
	if s.OffsetMinutes == nil {
		s.OffsetMinutes = make(map[PrayerID]int, len(PrayerOrder))
	}
	if s.NotificationsEnabled == nil {
		s.NotificationsEnabled = make(map[PrayerID]bool, len(PrayerOrder))
	}
	for _, id := range PrayerOrder {
		if _, ok := s.OffsetMinutes[id]; !ok {
			s.OffsetMinutes[id] = defaults.OffsetMinutes[id]
		}
		if _, ok := s.NotificationsEnabled[id]; !ok {
			s.NotificationsEnabled[id] = defaults.NotificationsEnabled[id]
		}
	}
	if s.ReminderIntervalHrs <= 0 {
		s.ReminderIntervalHrs = defaults.ReminderIntervalHrs
	}
	if s.PermissionStatus == "" {
		s.PermissionStatus = PermissionUnknown
	}
}

// Clone returns a deep copy so callers can hand out settings without
// exposing the store's internal maps.
func (s Settings) Clone() Settings {
	out := s
	out.OffsetMinutes = make(map[PrayerID]int, len(s.OffsetMinutes))
	for k, v := range s.OffsetMinutes {
		out.OffsetMinutes[k] = v
	}
	out.NotificationsEnabled = make(map[PrayerID]bool, len(s.NotificationsEnabled))
	for k, v := range s.NotificationsEnabled {
		out.NotificationsEnabled[k] = v
	}
	return out
}
