package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/showdeskhq/showdesk/internal/api"
	"github.com/showdeskhq/showdesk/internal/config"
	"github.com/showdeskhq/showdesk/internal/connectivity"
	"github.com/showdeskhq/showdesk/internal/gateway"
	"github.com/showdeskhq/showdesk/internal/model"
	"github.com/showdeskhq/showdesk/internal/notify"
	"github.com/showdeskhq/showdesk/internal/outbox"
	"github.com/showdeskhq/showdesk/internal/schedule"
	"github.com/showdeskhq/showdesk/internal/store"
	syncmgr "github.com/showdeskhq/showdesk/internal/sync"
)

const migrationsPath = "migrations"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	clk, err := schedule.NewClock(cfg.EventTimezone, cfg.EventDates)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid event calendar")
	}

	st, err := store.Open(cfg.StateDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open local store")
	}
	defer st.Close()

	box, err := outbox.Open(filepath.Join(cfg.StateDir, "outbox"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open outbox")
	}

	mon := connectivity.NewMonitor(false)
	defer mon.Close()

	var gw gateway.Gateway
	if cfg.DatabaseURL != "" {
		gw, err = gateway.NewPostgres(cfg.DatabaseURL, mon)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open remote store")
		}
		if migrator, ok := gw.(gateway.Migrator); ok && mon.Online() {
			if err := migrator.RunMigrations(migrationsPath); err != nil {
				log.Fatal().Err(err).Msg("failed to run migrations")
			}
		}
	} else {
		log.Info().Msg("no DATABASE_URL, running from local state only")
		gw = gateway.NewUnconfigured()
	}

	mgr := syncmgr.NewManager(st, gw, mon, box)

	var alerter notify.Alerter = notify.LogAlerter{}
	var realtime *syncmgr.Realtime
	if cfg.BrokerURL != "" {
		realtime, err = syncmgr.NewRealtime(cfg.BrokerURL, cfg.TopicPrefix, mon)
		if err != nil {
			log.Warn().Err(err).Msg("realtime broker unavailable, starting without live invalidation")
		} else {
			defer realtime.Close()
			mgr.Changes = realtime.Changes()
			alerter = notify.MultiAlerter{
				notify.LogAlerter{},
				notify.NewMQTTAlerter(realtime.Client(), cfg.TopicPrefix),
			}
		}
	}

	mgr.Start()
	defer mgr.Stop()

	fired := notify.NewMemoryFired()
	if cfg.RedisAddress != "" {
		fired = notify.NewRedisFired(cfg.RedisAddress, cfg.RedisUsername, cfg.RedisPassword)
	}
	scheduler := notify.NewScheduler(
		func() []model.ScheduleSlot { return st.Get().Schedule },
		func() bool { return st.Get().NotificationsEnabled },
		clk, alerter, fired, cfg.NotifyInterval,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go scheduler.Run(ctx)

	router := api.NewRouter(
		api.ScheduleModule(mgr, clk),
		api.ClipModule(mgr, clk),
		api.NoteModule(mgr),
		api.DeliverableModule(mgr),
		api.CompletionModule(mgr),
		api.StatusModule(mgr, mon, clk),
		api.PreferenceModule(mgr),
	)

	srv := &http.Server{
		Addr:    cfg.ServerAddress,
		Handler: router,
	}

	go func() {
		log.Info().Str("address", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
