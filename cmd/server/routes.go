package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/miqat-dev/miqat/internal/config"
	"github.com/miqat-dev/miqat/internal/http/api"
	"github.com/miqat-dev/miqat/internal/http/api/endpoints"
	"github.com/miqat-dev/miqat/internal/location"
	"github.com/miqat-dev/miqat/internal/notify"
	"github.com/miqat-dev/miqat/internal/poller"
	"github.com/miqat-dev/miqat/internal/prayer"
	"github.com/miqat-dev/miqat/internal/settings"
	"github.com/miqat-dev/miqat/internal/tracker"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	cache *prayer.ScheduleCache,
	settingsStore *settings.Store,
	locSource *location.StaticSource,
	statePoller *poller.Poller,
	track *tracker.Tracker,
	orchestrator *notify.Orchestrator,
) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/app",
		Auth:   false,
	},
		endpoints.AuthPublicModule(cfg.JWTSecret, cfg.PairingCode, cfg.DeviceID),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/app",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
	},
		endpoints.SettingsModule(settingsStore, orchestrator, locSource),
		endpoints.PrayerModule(cache, settingsStore, locSource, statePoller, track, orchestrator, cfg.Timezone),
	)
}
