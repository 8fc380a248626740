package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/miqat-dev/miqat/internal/config"
	"github.com/miqat-dev/miqat/internal/db"
	"github.com/miqat-dev/miqat/internal/kv"
	"github.com/miqat-dev/miqat/internal/location"
	"github.com/miqat-dev/miqat/internal/notify"
	"github.com/miqat-dev/miqat/internal/poller"
	"github.com/miqat-dev/miqat/internal/prayer"
	"github.com/miqat-dev/miqat/internal/settings"
	"github.com/miqat-dev/miqat/internal/tracker"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if cfg.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// PostgreSQL for completion records
	conn, err := db.Init(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db init")
	}
	if err := db.RunMigrations(conn, cfg.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}
	store := db.NewStore(conn)

	// Redis for the prayer-time cache and the settings blob
	kvStore := kv.NewRedisStore(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelStartup()
	if err := kvStore.Ping(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("redis init")
	}

	settingsStore := settings.NewStore(startupCtx, kvStore)

	calculator := prayer.NewHTTPCalculator(cfg.CalculatorURL, cfg.Timezone)
	cache := prayer.NewScheduleCache(kvStore, calculator, cfg.CacheTTL)
	locSource := location.NewStaticSource(cfg.DefaultLat, cfg.DefaultLon)

	sink, err := notify.NewMQTTSink(cfg.MQTTBrokerURL, cfg.DeviceID)
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt init")
	}

	orchestrator := notify.NewOrchestrator(cache, settingsStore, sink, locSource, cfg.Timezone)
	track := tracker.New(store, cache, settingsStore, locSource, cfg.Timezone)

	statePoller := poller.New(cache, settingsStore, locSource, cfg.Timezone, func(st poller.State) {
		log.Info().
			Str("current", string(st.Current)).
			Str("next", string(st.Next)).
			Time("next_time", st.NextTime).
			Msg("prayer state changed")
	})

	// the device reports permission changes over the sink's stream
	go func() {
		for status := range sink.Permissions() {
			settingsStore.SetPermissionStatus(context.Background(), status)
		}
	}()

	// bring the reminder set in line with the persisted configuration
	if err := orchestrator.Reschedule(startupCtx); err != nil {
		log.Error().Err(err).Msg("initial reschedule failed, reminders stale until next trigger")
	}
	if current := settingsStore.Current(); current.RemembranceEnabled {
		orchestrator.StartRemembrance(time.Duration(current.ReminderIntervalHrs) * time.Hour)
	}

	if err := statePoller.Start(); err != nil {
		log.Fatal().Err(err).Msg("poller start")
	}

	r := gin.Default()
	RegisterRoutes(r, cfg, cache, settingsStore, locSource, statePoller, track, orchestrator)

	srv := &http.Server{Addr: cfg.ServerAddress, Handler: r}
	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("shutting down")

	// teardown order: stop producing timer callbacks first, then flush
	// state, then drop connections
	statePoller.Stop()
	orchestrator.Close()
	settingsStore.Close()
	sink.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if err := kvStore.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
	if err := conn.Close(); err != nil {
		log.Error().Err(err).Msg("db close")
	}
}
