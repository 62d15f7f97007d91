package core

import (
	"context"
	"database/sql"
	"sync/atomic"
	"time"

	"github.com/coregx/chsql/internal/logger"
)

const healthPingTimeout = 5 * time.Second

// HealthStatus is the outcome of the most recent background ping.
type HealthStatus struct {
	Healthy   bool
	Err       error
	CheckedAt time.Time
	// Failures counts consecutive failed pings.
	Failures int
}

// healthChecker pings the database at a fixed interval. Only transitions
// between healthy and unhealthy are logged above debug level.
type healthChecker struct {
	db       *sql.DB
	logger   logger.Logger
	interval time.Duration

	status atomic.Pointer[HealthStatus]
	cancel context.CancelFunc
	done   chan struct{}
}

func newHealthChecker(db *sql.DB, log logger.Logger, interval time.Duration) *healthChecker {
	h := &healthChecker{
		db:       db,
		logger:   log,
		interval: interval,
	}
	h.status.Store(&HealthStatus{Healthy: true})
	return h
}

func (h *healthChecker) start() {
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	h.done = make(chan struct{})
	go h.run(ctx)
}

func (h *healthChecker) run(ctx context.Context) {
	defer close(h.done)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			h.check(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (h *healthChecker) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, healthPingTimeout)
	err := h.db.PingContext(pingCtx)
	cancel()

	prev := h.status.Load()
	next := &HealthStatus{Healthy: err == nil, Err: err, CheckedAt: time.Now()}
	if err != nil {
		next.Failures = prev.Failures + 1
	}
	h.status.Store(next)

	switch {
	case err != nil && prev.Healthy:
		h.logger.Warn("database became unhealthy", "error", err, "interval", h.interval)
	case err != nil:
		h.logger.Debug("database still unhealthy", "error", err, "failures", next.Failures)
	case !prev.Healthy:
		h.logger.Info("database recovered", "failures", prev.Failures)
	default:
		h.logger.Debug("database health check passed")
	}
}

// shutdown stops the loop and waits for an in-flight ping. It is safe to
// call more than once.
func (h *healthChecker) shutdown() {
	if h.cancel == nil {
		return
	}
	h.cancel()
	<-h.done
}

func (h *healthChecker) current() HealthStatus {
	return *h.status.Load()
}
