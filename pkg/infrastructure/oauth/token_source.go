// Package oauth owns the authenticated Garmin session state: a persisted
// OAuth2 token plus the RoundTripper that attaches it to outgoing requests.
// The sync drivers never touch this directly; they receive an already
// authenticated http.Client.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// tokenFileName is the file inside the token directory holding the
// persisted OAuth2 token, compatible with what the auth helper writes.
const tokenFileName = "oauth2_token.json"

// ErrTokenStoreNotFound indicates the token directory does not exist at
// all, which means authentication was never set up on this machine.
var ErrTokenStoreNotFound = errors.New("token store directory not found")

// ErrReauthRequired indicates the persisted session is unusable (missing,
// unreadable, or past refresh) and the user must authenticate again.
var ErrReauthRequired = errors.New("re-authentication required")

// TokenSource returns a valid token.
// It is safe for concurrent use by multiple goroutines.
type TokenSource interface {
	Token(context.Context) (*oauth2.Token, error)
	ForceRefresh(context.Context) (*oauth2.Token, error)
}

// FileTokenSource reads the persisted Garmin token from disk and refreshes
// it against the Garmin OAuth endpoint when it is about to expire,
// persisting the rotated token back for future invocations.
type FileTokenSource struct {
	dir      string
	tokenURL string
	client   *http.Client

	mu     sync.Mutex
	cached *oauth2.Token
}

// NewFileTokenSource creates a token source backed by dir (typically
// ~/.garminconnect). It fails fast with ErrTokenStoreNotFound when the
// directory is missing so callers can surface a "re-authenticate" message
// instead of a generic API failure.
func NewFileTokenSource(dir, tokenURL string) (*FileTokenSource, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrTokenStoreNotFound, dir)
		}
		return nil, fmt.Errorf("stat token store: %w", err)
	}
	return &FileTokenSource{
		dir:      dir,
		tokenURL: tokenURL,
		client:   &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Token returns the stored token, refreshing it first when it expires
// within the next minute.
func (s *FileTokenSource) Token(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok := s.cached
	if tok == nil {
		var err error
		tok, err = s.load()
		if err != nil {
			return nil, err
		}
	}

	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token store has no access token: %w", ErrReauthRequired)
	}

	// Proactive refresh: expired or expiring in the next minute.
	if !tok.Expiry.IsZero() && time.Now().Add(time.Minute).After(tok.Expiry) {
		return s.refresh(ctx, tok)
	}

	s.cached = tok
	return tok, nil
}

// ForceRefresh refreshes the token regardless of expiry. Used by the
// transport after a 401.
func (s *FileTokenSource) ForceRefresh(ctx context.Context) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok := s.cached
	if tok == nil {
		var err error
		tok, err = s.load()
		if err != nil {
			return nil, err
		}
	}
	return s.refresh(ctx, tok)
}

func (s *FileTokenSource) load() (*oauth2.Token, error) {
	path := filepath.Join(s.dir, tokenFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no persisted token at %s: %w", path, ErrReauthRequired)
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	return &tok, nil
}

// refresh exchanges the refresh token and persists the rotated token.
func (s *FileTokenSource) refresh(ctx context.Context, tok *oauth2.Token) (*oauth2.Token, error) {
	if tok.RefreshToken == "" {
		return nil, fmt.Errorf("token expired and no refresh token stored: %w", ErrReauthRequired)
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", tok.RefreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, fmt.Errorf("refresh rejected with status %d: %w", resp.StatusCode, ErrReauthRequired)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("refresh failed with status: %d", resp.StatusCode)
	}

	var result struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode refresh response: %w", err)
	}

	// Garmin does not always rotate refresh tokens; keep the old one when
	// the response omits it so we do not wipe the stored value.
	refreshToken := result.RefreshToken
	if refreshToken == "" {
		refreshToken = tok.RefreshToken
	}

	fresh := &oauth2.Token{
		AccessToken:  result.AccessToken,
		RefreshToken: refreshToken,
		Expiry:       time.Now().Add(time.Duration(result.ExpiresIn) * time.Second),
		TokenType:    "Bearer",
	}

	if err := s.persist(fresh); err != nil {
		return nil, fmt.Errorf("failed to persist new token: %w", err)
	}

	s.cached = fresh
	return fresh, nil
}

func (s *FileTokenSource) persist(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, tokenFileName), data, 0o600)
}

// StaticTokenSource returns a source that always yields tok and cannot
// refresh. Useful for tests and short-lived sessions.
func StaticTokenSource(tok *oauth2.Token) TokenSource {
	return staticSource{tok: tok}
}

type staticSource struct {
	tok *oauth2.Token
}

func (s staticSource) Token(context.Context) (*oauth2.Token, error) { return s.tok, nil }

func (s staticSource) ForceRefresh(context.Context) (*oauth2.Token, error) {
	return nil, fmt.Errorf("static token cannot be refreshed: %w", ErrReauthRequired)
}
