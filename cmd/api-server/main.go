package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/thetheqs/sghss-scheduling/internal/api"
	"github.com/thetheqs/sghss-scheduling/internal/config"
	"github.com/thetheqs/sghss-scheduling/internal/db"
	"github.com/thetheqs/sghss-scheduling/internal/document"
	"github.com/thetheqs/sghss-scheduling/internal/hospitalization"
	"github.com/thetheqs/sghss-scheduling/internal/notification"
	redisclient "github.com/thetheqs/sghss-scheduling/internal/redis"
	"github.com/thetheqs/sghss-scheduling/internal/scheduling"
)

const version = "1.0.0"

func main() {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api-server").Logger()
	log.Info().Msg("api-server starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}

	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("configuration loaded")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
	cancelPg()
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	log.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("error closing redis")
		}
	}()
	log.Info().Msg("connected to Redis")

	locker := redisclient.NewRedisLocker(rdb, cfg.LockTTL)
	notifier := notification.NewRedisNotifier(rdb, cfg.NotifyChannel)

	schedStore := scheduling.NewPgStore(pgPool)
	booking := scheduling.NewBookingService(schedStore, locker, notifier, log)
	lifecycle := scheduling.NewLifecycleService(schedStore, scheduling.Issuers{
		Certificate:   document.NewPgIssuer(pgPool, document.KindCertificate),
		Prescription:  document.NewPgIssuer(pgPool, document.KindPrescription),
		MedicalRecord: document.NewPgIssuer(pgPool, document.KindMedicalRecord),
	}, notifier, log)

	bedStore := hospitalization.NewPgStore(pgPool)
	beds := hospitalization.NewService(bedStore, locker, log)

	router := api.NewRouter(api.RouterConfig{
		Booking:   booking,
		Lifecycle: lifecycle,
		Beds:      beds,
		PgPool:    pgPool,
		Redis:     rdb,
		Logger:    log,
		Env:       cfg.Env,
		Version:   version,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-rootCtx.Done()
	log.Info().Msg("shutting down api-server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
