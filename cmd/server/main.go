// Command server runs the EPC agenda scheduling service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maysotoledo/agenda-epc/internal/api"
	"github.com/maysotoledo/agenda-epc/internal/cache"
	"github.com/maysotoledo/agenda-epc/internal/config"
	"github.com/maysotoledo/agenda-epc/internal/notify"
	"github.com/maysotoledo/agenda-epc/internal/repository"
	"github.com/maysotoledo/agenda-epc/internal/roles"
	"github.com/maysotoledo/agenda-epc/internal/service/blocks"
	"github.com/maysotoledo/agenda-epc/internal/service/events"
	"github.com/maysotoledo/agenda-epc/internal/service/reminders"
	"github.com/maysotoledo/agenda-epc/internal/service/vacations"
	"github.com/maysotoledo/agenda-epc/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	location, err := cfg.Calendar.GetLocation()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid calendar timezone")
	}

	db, err := repository.NewDB(&cfg.Database.Postgres, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	eventRepo := repository.NewEventRepository(db)
	blockageRepo := repository.NewBlockageRepository(db)
	vacationRepo := repository.NewVacationRepository(db)
	userRepo := repository.NewUserRepository(db)

	roleProvider := roles.NewDBProvider(userRepo)

	var notifier notify.Notifier = notify.NewLogNotifier(log)
	if cfg.Notifier.Enabled {
		notifier = notify.NewWebhookNotifier(&cfg.Notifier, log)
	}

	var slotCache *cache.AvailabilityCache
	if cfg.Database.Redis.Host != "" {
		slotCache, err = cache.NewAvailabilityCache(&cfg.Database.Redis, cfg.Calendar.AvailabilityCacheTTL, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		defer slotCache.Close()
	} else {
		log.Warn().Msg("Redis not configured, availability cache disabled")
	}

	blockService := blocks.NewService(db, blockageRepo, log)
	eventService := events.NewService(db, eventRepo, blockageRepo, userRepo, roleProvider, notifier, log)
	vacationService := vacations.NewService(db, vacationRepo, roleProvider, &cfg.Vacation, log)

	reminderService := reminders.NewService(&cfg.Reminders, location, eventRepo, userRepo, notifier, log)
	if err := reminderService.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start reminder scheduler")
	}
	defer reminderService.Stop()

	handler := api.NewHandler(eventService, blockService, vacationService, slotCache, location, log)
	router := api.NewRouter(cfg, db, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Forced shutdown")
	}
}
