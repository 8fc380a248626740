package packets

// PairRequest exchanges the shared pairing code for an API token.
type PairRequest struct {
	DeviceID    string `json:"device_id" binding:"required"`
	PairingCode string `json:"pairing_code" binding:"required"`
}

// UpdateSettingsRequest carries a partial settings change. Nil fields are
// untouched. Transient marks a rapid-fire update (e.g. a slider mid-drag)
// that should be debounced and must not trigger a reschedule yet; it is
// only honored when the request touches nothing but offsets.
type UpdateSettingsRequest struct {
	CalculationMethod    *string         `json:"calculation_method"`
	LegalSchool          *string         `json:"legal_school"`
	OffsetMinutes        map[string]int  `json:"offset_minutes"`
	NotificationsEnabled map[string]bool `json:"notifications_enabled"`
	ReminderIntervalHrs  *int            `json:"reminder_interval_hours"`
	AdhanSound           *string         `json:"adhan_sound"`
	RemembranceEnabled   *bool           `json:"remembrance_enabled"`
	Transient            bool            `json:"transient"`
}

// UpdateLocationRequest records the device's current position.
type UpdateLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required"`
	Longitude *float64 `json:"longitude" binding:"required"`
}

// MarkCompletionRequest marks a prayer completed for a day (today when
// empty).
type MarkCompletionRequest struct {
	Day string `json:"day"`
}
