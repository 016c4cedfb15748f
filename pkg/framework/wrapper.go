// Package framework wraps command execution: argument validation, logger
// and error-tracking setup, run identity, and the stdout contract (exactly
// one JSON document per invocation, exit code 0 iff success).
package framework

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/MartinT518/apex-sync/pkg/bootstrap"
	sentryinfra "github.com/MartinT518/apex-sync/pkg/infrastructure/sentry"
	"github.com/MartinT518/apex-sync/pkg/sync"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

// stdout is swappable for tests; everything else goes through the logger
// on stderr.
var stdout io.Writer = os.Stdout

// RunContext carries the dependencies a command body needs.
type RunContext struct {
	Config *bootstrap.Config
	Logger *slog.Logger
	RunID  string
}

// DateRangeHandler is the body of a two-date-argument command. It returns
// the JSON-serializable success payload.
type DateRangeHandler func(ctx context.Context, rc *RunContext, startDate, endDate string) (any, error)

// Setup initializes logging and error tracking for a command and returns
// the run context plus a flush func to defer.
func Setup(service string) (*RunContext, func()) {
	cfg := bootstrap.LoadConfig()
	runID := uuid.NewString()
	logger := bootstrap.NewLogger(service).With("run_id", runID)

	if err := sentryinfra.Init(sentryinfra.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		Release:     Version,
		ServerName:  service,
	}, logger); err != nil {
		// Error tracking is best-effort; the run proceeds without it.
		logger.Warn("Sentry init failed", "error", err)
	}

	return &RunContext{Config: cfg, Logger: logger, RunID: runID}, sentryinfra.Flush
}

// RunDateRange executes a date-range command end to end and returns the
// process exit code. Misuse (wrong arity, malformed dates) produces an
// INVALID_ARGS failure document, never a crash.
func RunDateRange(service, usage string, args []string, handler DateRangeHandler) int {
	rc, flush := Setup(service)
	defer flush()

	if len(args) != 2 {
		return emitFailure(rc, sync.NewFailure(sync.KindInvalidArgs, usage))
	}
	startDate, endDate := args[0], args[1]
	if msg, ok := validateDates(startDate, endDate); !ok {
		return emitFailure(rc, sync.NewFailure(sync.KindInvalidArgs, msg))
	}

	rc.Logger.Info("Run started", "start", startDate, "end", endDate)

	// Cancellation is process-level only; there is no mid-batch token.
	out, err := handler(context.Background(), rc, startDate, endDate)
	if err != nil {
		failure := sync.FailureFromError(err)
		if failure.Error == sync.KindUnknown {
			sentryinfra.CaptureError(err, service, rc.RunID)
		}
		return emitFailure(rc, failure)
	}

	rc.Logger.Info("Run completed successfully")
	return Emit(rc, out)
}

// validateDates checks both arguments are YYYY-MM-DD.
func validateDates(startDate, endDate string) (string, bool) {
	if _, err := time.Parse("2006-01-02", startDate); err != nil {
		return "start date must be YYYY-MM-DD, got: " + startDate, false
	}
	if _, err := time.Parse("2006-01-02", endDate); err != nil {
		return "end date must be YYYY-MM-DD, got: " + endDate, false
	}
	return "", true
}

// Emit writes the single JSON result document to stdout and returns the
// success exit code. An encode failure is the only thing allowed to write
// a second document, because at that point the first never made it out.
func Emit(rc *RunContext, v any) int {
	if err := json.NewEncoder(stdout).Encode(v); err != nil {
		rc.Logger.Error("Failed to encode result", "error", err)
		_ = json.NewEncoder(stdout).Encode(sync.NewFailure(sync.KindUnknown, "failed to encode result: "+err.Error()))
		return 1
	}
	return 0
}

func emitFailure(rc *RunContext, f sync.Failure) int {
	rc.Logger.Error("Run failed", "kind", f.Error, "message", f.Message)
	_ = json.NewEncoder(stdout).Encode(f)
	return 1
}

// EmitError classifies err, writes the failure document and returns the
// failure exit code. For commands that do their own argument handling.
func EmitError(rc *RunContext, err error) int {
	return emitFailure(rc, sync.FailureFromError(err))
}

// EmitInvalidArgs writes an INVALID_ARGS failure document. For commands
// that parse their own flags instead of going through RunDateRange.
func EmitInvalidArgs(rc *RunContext, msg string) int {
	return emitFailure(rc, sync.NewFailure(sync.KindInvalidArgs, msg))
}
