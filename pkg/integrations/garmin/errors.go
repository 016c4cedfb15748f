package garmin

import (
	"errors"
	"fmt"

	httputil "github.com/MartinT518/apex-sync/pkg/infrastructure/http"
	"github.com/MartinT518/apex-sync/pkg/infrastructure/oauth"
)

// AuthError means the session was rejected or could not be established.
// Fatal to any batch; the user has to re-authenticate.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("garmin authentication: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitError means upstream throttling was verified (HTTP 429).
// Fatal to the current batch; the caller should back off and retry later.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string { return fmt.Sprintf("garmin rate limit: %v", e.Err) }
func (e *RateLimitError) Unwrap() error { return e.Err }

// APIError is any other classified upstream fault. The upstream message is
// preserved verbatim for diagnostics.
type APIError struct {
	Err error
}

func (e *APIError) Error() string { return e.Err.Error() }
func (e *APIError) Unwrap() error { return e.Err }

// classify maps a raw request error onto the typed taxonomy. HTTP status
// codes drive the classification; token-store and re-auth conditions from
// the oauth layer count as authentication failures. Anything else passes
// through unclassified.
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, oauth.ErrTokenStoreNotFound) {
		return err
	}
	if errors.Is(err, oauth.ErrReauthRequired) {
		return &AuthError{Err: err}
	}

	var httpErr *httputil.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case 401, 403:
			return &AuthError{Err: err}
		case 429:
			return &RateLimitError{Err: err}
		default:
			return &APIError{Err: err}
		}
	}

	return err
}
