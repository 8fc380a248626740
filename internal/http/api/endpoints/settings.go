package endpoints

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/miqat-dev/miqat/internal/http/api"
	"github.com/miqat-dev/miqat/internal/http/api/packets"
	"github.com/miqat-dev/miqat/internal/location"
	"github.com/miqat-dev/miqat/internal/model"
	"github.com/miqat-dev/miqat/internal/notify"
	"github.com/miqat-dev/miqat/internal/settings"
)

// maxOffsetMinutes bounds per-prayer offsets to a sane range.
const maxOffsetMinutes = 30

type SettingsController struct {
	store        *settings.Store
	orchestrator *notify.Orchestrator
	loc          *location.StaticSource
}

func NewSettingsController(store *settings.Store, orch *notify.Orchestrator, loc *location.StaticSource) *SettingsController {
	return &SettingsController{store: store, orchestrator: orch, loc: loc}
}

func SettingsModule(store *settings.Store, orch *notify.Orchestrator, loc *location.StaticSource) api.Module {
	ctl := NewSettingsController(store, orch, loc)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/settings", api.ResolveEndpoint(ctl.getSettings))
		c.PATCH("/settings", api.ResolveEndpoint(ctl.updateSettings))
		c.PUT("/settings/location", api.ResolveEndpoint(ctl.updateLocation))
	})
}

func (s *SettingsController) getSettings(ctx *gin.Context) (any, *api.APIError) {
	return packets.SettingsResponse{Settings: s.store.Current()}, nil
}

func (s *SettingsController) updateSettings(ctx *gin.Context) (any, *api.APIError) {
	var request packets.UpdateSettingsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if apiErr := validateSettingsRequest(request); apiErr != nil {
		return nil, apiErr
	}

	// method, school, offsets, enabled flags and sound all affect what
	// gets scheduled; interval and remembrance toggles only affect the
	// remembrance cycle
	timingAffected := request.CalculationMethod != nil ||
		request.LegalSchool != nil ||
		len(request.OffsetMinutes) > 0 ||
		len(request.NotificationsEnabled) > 0 ||
		request.AdhanSound != nil

	// transient only applies to offset-only requests (slider drags); any
	// other field present always completes a synchronous write and, when
	// timing-affecting, a reschedule
	offsetOnly := request.CalculationMethod == nil &&
		request.LegalSchool == nil &&
		len(request.NotificationsEnabled) == 0 &&
		request.AdhanSound == nil &&
		request.ReminderIntervalHrs == nil &&
		request.RemembranceEnabled == nil
	debounced := request.Transient && offsetOnly

	if err := s.store.Update(ctx.Request.Context(), func(set *model.Settings) {
		applySettingsRequest(set, request)
	}, !debounced); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not persist settings"}
	}

	current := s.store.Current()

	if timingAffected && !debounced {
		if err := s.orchestrator.Reschedule(ctx.Request.Context()); err != nil {
			// settings are saved; the reschedule failure is reported so
			// the client can retry it explicitly
			return nil, &api.APIError{Code: http.StatusBadGateway, Message: "settings saved but rescheduling failed"}
		}
	}

	if request.RemembranceEnabled != nil || (request.ReminderIntervalHrs != nil && current.RemembranceEnabled) {
		if current.RemembranceEnabled {
			s.orchestrator.StartRemembrance(time.Duration(current.ReminderIntervalHrs) * time.Hour)
		} else {
			s.orchestrator.StopRemembrance()
		}
	}

	return packets.SettingsResponse{Settings: current}, nil
}

func (s *SettingsController) updateLocation(ctx *gin.Context) (any, *api.APIError) {
	var request packets.UpdateLocationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	s.loc.Update(*request.Latitude, *request.Longitude)
	log.Info().Float64("lat", *request.Latitude).Float64("lon", *request.Longitude).Msg("device location updated")

	if err := s.orchestrator.Reschedule(ctx.Request.Context()); err != nil {
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "location saved but rescheduling failed"}
	}
	return packets.MessageResponse{Message: "location updated"}, nil
}

func validateSettingsRequest(request packets.UpdateSettingsRequest) *api.APIError {
	for raw, minutes := range request.OffsetMinutes {
		if !model.PrayerID(raw).Valid() {
			return &api.APIError{Code: http.StatusBadRequest, Message: fmt.Sprintf("unknown prayer %q", raw)}
		}
		if minutes < -maxOffsetMinutes || minutes > maxOffsetMinutes {
			return &api.APIError{Code: http.StatusBadRequest, Message: fmt.Sprintf("offset for %s out of range (±%d)", raw, maxOffsetMinutes)}
		}
	}
	for raw := range request.NotificationsEnabled {
		if !model.PrayerID(raw).Valid() {
			return &api.APIError{Code: http.StatusBadRequest, Message: fmt.Sprintf("unknown prayer %q", raw)}
		}
	}
	if request.ReminderIntervalHrs != nil && *request.ReminderIntervalHrs < 1 {
		return &api.APIError{Code: http.StatusBadRequest, Message: "reminder interval must be at least 1 hour"}
	}
	return nil
}

func applySettingsRequest(set *model.Settings, request packets.UpdateSettingsRequest) {
	if request.CalculationMethod != nil {
		set.CalculationMethod = *request.CalculationMethod
	}
	if request.LegalSchool != nil {
		set.LegalSchool = *request.LegalSchool
	}
	for raw, minutes := range request.OffsetMinutes {
		set.OffsetMinutes[model.PrayerID(raw)] = minutes
	}
	for raw, enabled := range request.NotificationsEnabled {
		set.NotificationsEnabled[model.PrayerID(raw)] = enabled
	}
	if request.ReminderIntervalHrs != nil {
		set.ReminderIntervalHrs = *request.ReminderIntervalHrs
	}
	if request.AdhanSound != nil {
		set.AdhanSound = *request.AdhanSound
	}
	if request.RemembranceEnabled != nil {
		set.RemembranceEnabled = *request.RemembranceEnabled
	}
}
