// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smith3v/tg-reminder-bot/pkg/logger"
)

const pingTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// TickReporter exposes when the reminder scheduler last scanned.
type TickReporter interface {
	LastTick() time.Time
	Interval() time.Duration
}

type Dependencies struct {
	Database  Pinger
	Scheduler TickReporter
	Now       func() time.Time
	// Started is when the process came up; readiness allows the first
	// ticks to arrive relative to it.
	Started time.Time
}

func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Started.IsZero() {
		deps.Started = deps.Now()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/readyz", func(c *gin.Context) {
		if problem := ready(c.Request.Context(), deps); problem != "" {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": problem})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	return router
}

func ready(ctx context.Context, deps Dependencies) string {
	if deps.Database != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if err := deps.Database.Ping(pingCtx); err != nil {
			logger.Warn("readiness database ping failed", "error", err)
			return "database_unreachable"
		}
	}
	if deps.Scheduler != nil {
		last := deps.Scheduler.LastTick()
		if last.IsZero() {
			last = deps.Started
		}
		if deps.Now().Sub(last) > 3*deps.Scheduler.Interval() {
			return "scheduler_stalled"
		}
	}
	return ""
}

// Serve runs the probe server on address until ctx is done.
func Serve(ctx context.Context, address string, handler http.Handler) error {
	server := &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("health server starting", "address", address)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
