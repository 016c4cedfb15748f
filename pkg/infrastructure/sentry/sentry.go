// Package sentry wires error tracking for the sync CLIs.
package sentry

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
)

type Config struct {
	DSN         string
	Environment string
	Release     string
	ServerName  string
}

// Init initializes Sentry. A missing DSN disables tracking rather than
// failing; the CLIs must keep working without it.
func Init(cfg Config, logger *slog.Logger) error {
	if cfg.DSN == "" {
		if logger != nil {
			logger.Debug("Sentry DSN not configured - error tracking disabled")
		}
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		Release:     cfg.Release,
		ServerName:  cfg.ServerName,
		BeforeSend: func(event *sentry.Event, hint *sentry.EventHint) *sentry.Event {
			// Filter out sensitive data
			if event.Request != nil && event.Request.Headers != nil {
				delete(event.Request.Headers, "Authorization")
				delete(event.Request.Headers, "Cookie")
			}
			return event
		},
	})
	if err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}

	if logger != nil {
		logger.Debug("Sentry initialized", "environment", cfg.Environment, "release", cfg.Release)
	}
	return nil
}

// CaptureError reports err with the given run identity and returns
// immediately; delivery happens on Flush.
func CaptureError(err error, service, runID string) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("service", service)
		scope.SetTag("run_id", runID)
		sentry.CaptureException(err)
	})
}

// Flush waits for buffered events to be delivered. Call before process
// exit.
func Flush() {
	sentry.Flush(2 * time.Second)
}
