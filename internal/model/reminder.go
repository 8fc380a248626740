package model

// ReminderID is the fixed identifier space used for cancel/reschedule
// idempotency: one id per daily prayer plus one shared id for the periodic
// remembrance reminder. The sink must treat scheduling an existing id as a
// replacement.
type ReminderID string

const (
	ReminderFajr        ReminderID = "reminder.fajr"
	ReminderSunrise     ReminderID = "reminder.sunrise"
	ReminderDhuhr       ReminderID = "reminder.dhuhr"
	ReminderAsr         ReminderID = "reminder.asr"
	ReminderMaghrib     ReminderID = "reminder.maghrib"
	ReminderIsha        ReminderID = "reminder.isha"
	ReminderRemembrance ReminderID = "reminder.remembrance"
)

// PrayerReminderIDs maps each prayer slot to its reminder id.
var PrayerReminderIDs = map[PrayerID]ReminderID{
	PrayerFajr:    ReminderFajr,
	PrayerSunrise: ReminderSunrise,
	PrayerDhuhr:   ReminderDhuhr,
	PrayerAsr:     ReminderAsr,
	PrayerMaghrib: ReminderMaghrib,
	PrayerIsha:    ReminderIsha,
}

// AllPrayerReminderIDs returns the prayer reminder ids in canonical order,
// the set cancelled before every reschedule pass.
func AllPrayerReminderIDs() []ReminderID {
	out := make([]ReminderID, 0, len(PrayerOrder))
	for _, p := range PrayerOrder {
		out = append(out, PrayerReminderIDs[p])
	}
	return out
}

// SoundCategory selects the notification sound family for a reminder.
type SoundCategory string

const (
	SoundAdhan SoundCategory = "adhan"
	SoundTone  SoundCategory = "tone"
)

// SoundFor returns the fixed sound category for a prayer slot. The four
// midday-to-night prayers carry the adhan; the pre-dawn and sunrise slots
// use the generic tone. Not configurable per call.
func SoundFor(p PrayerID) SoundCategory {
	switch p {
	case PrayerDhuhr, PrayerAsr, PrayerMaghrib, PrayerIsha:
		return SoundAdhan
	}
	return SoundTone
}
