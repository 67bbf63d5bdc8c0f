package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/cartloom/cartloom-backend/api/responses"
	"github.com/cartloom/cartloom-backend/pkg/logger"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness and readiness probes.
type HealthController struct {
	db    pinger
	redis pinger
	logg  *logger.Logger
}

func NewHealthController(db, redis pinger, logg *logger.Logger) *HealthController {
	return &HealthController{db: db, redis: redis, logg: logg}
}

// Live reports process liveness only.
func (c *HealthController) Live(w http.ResponseWriter, r *http.Request) {
	responses.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready checks the backing stores with a short deadline so a wedged
// dependency cannot stall the probe.
func (c *HealthController) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"db": "ok", "redis": "ok"}
	healthy := true

	if err := c.db.Ping(ctx); err != nil {
		c.logg.Error(ctx, "readiness db check failed", err)
		checks["db"] = "unreachable"
		healthy = false
	}
	if err := c.redis.Ping(ctx); err != nil {
		c.logg.Error(ctx, "readiness redis check failed", err)
		checks["redis"] = "unreachable"
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	responses.WriteSuccess(w, status, checks)
}
