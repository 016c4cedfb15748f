// Package sync drives paced, sequential date-range synchronization against
// the Garmin Connect API and assembles the batch results handed back to
// callers. The central design line: batch-level faults (auth, verified
// rate limit, classified API errors on batch-scoped calls) abort the whole
// run, while a failed fetch for one metric on one item only degrades that
// field and processing continues.
package sync

import (
	"errors"
	"log/slog"
	"time"

	"github.com/MartinT518/apex-sync/pkg/infrastructure/oauth"
	"github.com/MartinT518/apex-sync/pkg/integrations/garmin"
)

// ErrorKind is the stable error vocabulary of the result contract.
type ErrorKind string

const (
	KindAuthFailed     ErrorKind = "AUTH_FAILED"
	KindRateLimited    ErrorKind = "RATE_LIMITED"
	KindAPIError       ErrorKind = "API_ERROR"
	KindSourceNotFound ErrorKind = "MCP_SOURCE_NOT_FOUND"
	KindInvalidArgs    ErrorKind = "INVALID_ARGS"
	KindUnknown        ErrorKind = "UNKNOWN_ERROR"
)

// ErrInvalidDate marks unparseable date arguments.
var ErrInvalidDate = errors.New("invalid date")

// ActivityRecord is one normalized activity in a batch.
type ActivityRecord struct {
	ActivityID        int64          `json:"activityId"`
	ActivityName      string         `json:"activityName"`
	ActivityType      string         `json:"activityType"`
	StartTimeGMT      *string        `json:"startTimeGMT"`
	StartTimeLocal    *string        `json:"startTimeLocal"`
	DurationInSeconds int            `json:"durationInSeconds"`
	Details           map[string]any `json:"details"`
}

// WellnessDay is one calendar day's wellness snapshot. Pointer fields stay
// nil when every fetch for that metric failed; the entry itself is always
// emitted so the batch keeps one entry per day in the range.
type WellnessDay struct {
	Date         string   `json:"date"`
	HRV          *float64 `json:"hrv"`
	RHR          *float64 `json:"rhr"`
	SleepSeconds *int     `json:"sleepSeconds"`
	SleepScore   *int     `json:"sleepScore"`
}

// HasData reports whether any of the headline metrics resolved.
func (d WellnessDay) HasData() bool {
	return d.HRV != nil || d.RHR != nil || d.SleepSeconds != nil
}

// ActivityBatch is the successful result of an activity sync.
type ActivityBatch struct {
	Success    bool             `json:"success"`
	Activities []ActivityRecord `json:"activities"`
	Count      int              `json:"count"`
}

// WellnessBatch is the successful result of a wellness sync.
type WellnessBatch struct {
	Success         bool          `json:"success"`
	WellnessData    []WellnessDay `json:"wellness_data"`
	Count           int           `json:"count"`
	EntriesWithData int           `json:"entries_with_data"`
}

// Failure is the result envelope for an aborted batch. Partial results are
// deliberately absent: the batch is all-or-nothing at this tier.
type Failure struct {
	Success bool      `json:"success"`
	Error   ErrorKind `json:"error"`
	Message string    `json:"message"`
}

// NewFailure builds a failure envelope.
func NewFailure(kind ErrorKind, message string) Failure {
	return Failure{Success: false, Error: kind, Message: message}
}

// Classify maps a driver error onto the result vocabulary, with the
// user-facing message for that kind. API error messages pass through
// verbatim for diagnostics.
func Classify(err error) (ErrorKind, string) {
	var (
		authErr *garmin.AuthError
		rateErr *garmin.RateLimitError
		apiErr  *garmin.APIError
	)
	switch {
	case errors.Is(err, oauth.ErrTokenStoreNotFound):
		return KindSourceNotFound, err.Error()
	case errors.Is(err, ErrInvalidDate):
		return KindInvalidArgs, err.Error()
	case errors.As(err, &authErr):
		return KindAuthFailed, "Authentication failed. Please re-authenticate with Garmin Connect."
	case errors.As(err, &rateErr):
		return KindRateLimited, "Rate limit exceeded. Please wait a few minutes before trying again."
	case errors.As(err, &apiErr):
		return KindAPIError, err.Error()
	default:
		return KindUnknown, "Unexpected error: " + err.Error()
	}
}

// FailureFromError is Classify wrapped into the result envelope.
func FailureFromError(err error) Failure {
	kind, msg := Classify(err)
	return NewFailure(kind, msg)
}

// batchFatal reports whether an item-scoped call failure must abort the
// whole batch. Auth rejection and verified rate limiting are systemic no
// matter which call surfaced them; everything else degrades in place.
func batchFatal(err error) bool {
	var (
		authErr *garmin.AuthError
		rateErr *garmin.RateLimitError
	)
	return errors.As(err, &authErr) || errors.As(err, &rateErr)
}

// Options tunes a driver run.
type Options struct {
	// ItemDelay is the pacing wait between successive items, applied
	// starting from the second item. Zero disables pacing.
	ItemDelay time.Duration

	// Sleep overrides time.Sleep. Tests stub it.
	Sleep func(time.Duration)

	Logger *slog.Logger
}

func (o Options) sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	if o.Sleep != nil {
		o.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
