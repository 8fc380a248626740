package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/miqat-dev/miqat/internal/http/api"
	"github.com/miqat-dev/miqat/internal/http/api/packets"
	"github.com/miqat-dev/miqat/internal/location"
	"github.com/miqat-dev/miqat/internal/model"
	"github.com/miqat-dev/miqat/internal/notify"
	"github.com/miqat-dev/miqat/internal/poller"
	"github.com/miqat-dev/miqat/internal/prayer"
	"github.com/miqat-dev/miqat/internal/settings"
	"github.com/miqat-dev/miqat/internal/tracker"
)

type PrayerController struct {
	cache        *prayer.ScheduleCache
	store        *settings.Store
	loc          location.Source
	poll         *poller.Poller
	track        *tracker.Tracker
	orchestrator *notify.Orchestrator
	timezone     *time.Location
}

func NewPrayerController(cache *prayer.ScheduleCache, store *settings.Store, loc location.Source, poll *poller.Poller, track *tracker.Tracker, orch *notify.Orchestrator, tz *time.Location) *PrayerController {
	return &PrayerController{
		cache:        cache,
		store:        store,
		loc:          loc,
		poll:         poll,
		track:        track,
		orchestrator: orch,
		timezone:     tz,
	}
}

func PrayerModule(cache *prayer.ScheduleCache, store *settings.Store, loc location.Source, poll *poller.Poller, track *tracker.Tracker, orch *notify.Orchestrator, tz *time.Location) api.Module {
	ctl := NewPrayerController(cache, store, loc, poll, track, orch, tz)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/prayers/today", api.ResolveEndpoint(ctl.today))
		c.GET("/prayers/state", api.ResolveEndpoint(ctl.state))
		c.POST("/prayers/:id/completions", api.ResolveEndpoint(ctl.markCompleted))
		c.DELETE("/prayers/:id/completions/:day", api.ResolveEndpoint(ctl.unmark))
		c.GET("/prayers/:id/streak", api.ResolveEndpoint(ctl.streak))
		c.POST("/reminders/reschedule", api.ResolveEndpoint(ctl.reschedule))
	})
}

func (p *PrayerController) today(ctx *gin.Context) (any, *api.APIError) {
	cfg := p.store.Current()
	lat, lon := location.Resolve(ctx.Request.Context(), p.loc)
	day := time.Now().In(p.timezone).Format(model.DayFormat)

	times, err := p.cache.GetOrCompute(ctx.Request.Context(), day, lat, lon, cfg.CalculationMethod, cfg.LegalSchool)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "prayer times unavailable"}
	}
	return packets.DailyTimesResponse{Times: times}, nil
}

func (p *PrayerController) state(ctx *gin.Context) (any, *api.APIError) {
	st, ok := p.poll.Current()
	if !ok {
		return nil, &api.APIError{Code: http.StatusServiceUnavailable, Message: "prayer state not ready"}
	}
	return st, nil
}

func (p *PrayerController) markCompleted(ctx *gin.Context) (any, *api.APIError) {
	prayerID := model.PrayerID(ctx.Param("id"))
	if !prayerID.Valid() {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown prayer"}
	}

	var request packets.MarkCompletionRequest
	if err := ctx.ShouldBindJSON(&request); err != nil && err.Error() != "EOF" {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	day := request.Day
	if day == "" {
		day = time.Now().In(p.timezone).Format(model.DayFormat)
	} else if _, err := time.Parse(model.DayFormat, day); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid day, want YYYY-MM-DD"}
	}

	rec, err := p.track.MarkCompleted(ctx.Request.Context(), prayerID, day)
	if errors.Is(err, tracker.ErrNotDue) {
		return nil, &api.APIError{Code: http.StatusConflict, Message: "prayer time has not passed yet"}
	}
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not record completion"}
	}
	return packets.CompletionResponse{Record: rec}, nil
}

func (p *PrayerController) unmark(ctx *gin.Context) (any, *api.APIError) {
	prayerID := model.PrayerID(ctx.Param("id"))
	if !prayerID.Valid() {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown prayer"}
	}
	day := ctx.Param("day")
	if _, err := time.Parse(model.DayFormat, day); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid day, want YYYY-MM-DD"}
	}

	if err := p.track.Unmark(ctx.Request.Context(), prayerID, day); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not remove completion"}
	}
	return packets.MessageResponse{Message: "deleted"}, nil
}

func (p *PrayerController) streak(ctx *gin.Context) (any, *api.APIError) {
	prayerID := model.PrayerID(ctx.Param("id"))
	if !prayerID.Valid() {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown prayer"}
	}

	st, err := p.track.Streak(ctx.Request.Context(), prayerID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not compute streak"}
	}
	return packets.StreakResponse{PrayerID: prayerID, Streak: st}, nil
}

func (p *PrayerController) reschedule(ctx *gin.Context) (any, *api.APIError) {
	if err := p.orchestrator.Reschedule(ctx.Request.Context()); err != nil {
		return nil, &api.APIError{Code: http.StatusBadGateway, Message: "rescheduling failed"}
	}
	return packets.MessageResponse{Message: "rescheduled"}, nil
}
