package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/thetheqs/sghss-scheduling/internal/hospitalization"
	"github.com/thetheqs/sghss-scheduling/internal/scheduling"
)

type RouterConfig struct {
	Booking   *scheduling.BookingService
	Lifecycle *scheduling.LifecycleService
	Beds      *hospitalization.Service
	PgPool    *pgxpool.Pool
	Redis     *redis.Client
	Logger    zerolog.Logger
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version, cfg.Logger)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Scheduling endpoints
	r.Get("/professionals/{id}/slots", listSlotsHandler(cfg.Booking))
	r.Post("/appointments", createAppointmentHandler(cfg.Booking))
	r.Post("/appointments/{id}/status", updateAppointmentStatusHandler(cfg.Lifecycle))
	r.Post("/appointments/{id}/complete", completeAppointmentHandler(cfg.Lifecycle))
	r.Get("/appointments/{id}/link", appointmentLinkHandler(cfg.Lifecycle))

	// Bed and hospitalization endpoints
	r.Post("/hospitalizations", hospitalizeHandler(cfg.Beds))
	r.Post("/patients/{id}/discharge", dischargeHandler(cfg.Beds))
	r.Post("/beds/{id}/maintenance", bedMaintenanceHandler(cfg.Beds))
	r.Post("/beds/{id}/available", bedAvailableHandler(cfg.Beds))

	return r
}
