package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// HealthHandler reports process liveness and dependency readiness. Postgres
// down makes the service unready; Redis down only degrades it.
type HealthHandler struct {
	pgPool  *pgxpool.Pool
	rdb     *redis.Client
	env     string
	version string
	log     zerolog.Logger
}

func NewHealthHandler(pgPool *pgxpool.Pool, rdb *redis.Client, env, version string, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		pgPool:  pgPool,
		rdb:     rdb,
		env:     env,
		version: version,
		log:     log,
	}
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Env     string `json:"env,omitempty"`
}

type ReadinessResponse struct {
	Status       string            `json:"status"`
	Version      string            `json:"version,omitempty"`
	Env          string            `json:"env,omitempty"`
	Dependencies map[string]string `json:"dependencies"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, LivenessResponse{
		Status:  "ok",
		Version: h.version,
		Env:     h.env,
	})
}

func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	deps := map[string]string{
		"postgres": h.probe(ctx, "postgres", h.pgPool.Ping),
		"redis": h.probe(ctx, "redis", func(c context.Context) error {
			return h.rdb.Ping(c).Err()
		}),
	}

	status := "ok"
	httpStatus := http.StatusOK
	switch {
	case deps["postgres"] == "down":
		status = "error"
		httpStatus = http.StatusServiceUnavailable
	case deps["redis"] == "down":
		status = "degraded"
	}

	writeJSON(w, httpStatus, ReadinessResponse{
		Status:       status,
		Version:      h.version,
		Env:          h.env,
		Dependencies: deps,
	})
}

func (h *HealthHandler) probe(ctx context.Context, name string, ping func(context.Context) error) string {
	probeCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := ping(probeCtx); err != nil {
		h.log.Warn().Err(err).Str("dependency", name).Msg("readiness probe failed")
		return "down"
	}
	return "ok"
}
