package packets

import "github.com/miqat-dev/miqat/internal/model"

type PairResponse struct {
	Token string `json:"token"`
}

type SettingsResponse struct {
	Settings model.Settings `json:"settings"`
}

type DailyTimesResponse struct {
	Times model.DailyTimes `json:"times"`
}

type CompletionResponse struct {
	Record model.CompletionRecord `json:"record"`
}

type StreakResponse struct {
	PrayerID model.PrayerID `json:"prayer_id"`
	Streak   model.Streak   `json:"streak"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
