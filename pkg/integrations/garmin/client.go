package garmin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	httputil "github.com/MartinT518/apex-sync/pkg/infrastructure/http"
	"github.com/MartinT518/apex-sync/pkg/infrastructure/oauth"
)

const (
	// DefaultBaseURL is the Garmin Connect API gateway.
	DefaultBaseURL = "https://connectapi.garmin.com"

	// DefaultTokenURL is the endpoint used to refresh the persisted
	// OAuth2 session token.
	DefaultTokenURL = DefaultBaseURL + "/di-oauth2-service/oauth/token"

	// activityListLimit caps one date-range listing call. The drivers
	// issue a single listing per batch, not a pagination loop.
	activityListLimit = 200
)

// Client is an authenticated Garmin Connect API client.
type Client struct {
	baseURL string
	client  *http.Client
}

// Compile-time check: *Client satisfies API.
var _ API = (*Client)(nil)

// NewClient creates a client whose requests are authenticated by the given
// token source.
func NewClient(source oauth.TokenSource) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: &oauth.Transport{Source: source},
		},
	}
}

// NewClientWithBaseURL is NewClient pointed at a non-default gateway.
// Used by tests against httptest servers.
func NewClientWithBaseURL(source oauth.TokenSource, baseURL string) *Client {
	c := NewClient(source)
	c.baseURL = baseURL
	return c
}

// do performs a GET and classifies any failure into the typed taxonomy.
func (c *Client) do(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classify(err)
	}
	if err := httputil.ParseErrorResponse(resp); err != nil {
		return nil, classify(err)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Err: fmt.Errorf("decode response for %s: %w", path, err)}
	}
	return nil
}

func (c *Client) ActivitiesByDate(ctx context.Context, startDate, endDate string) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("startDate", startDate)
	q.Set("endDate", endDate)
	q.Set("start", "0")
	q.Set("limit", fmt.Sprint(activityListLimit))

	var activities []map[string]any
	if err := c.getJSON(ctx, "/activitylist-service/activities/search/activities?"+q.Encode(), &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (c *Client) Activity(ctx context.Context, activityID int64) (map[string]any, error) {
	var details map[string]any
	path := fmt.Sprintf("/activity-service/activity/%d", activityID)
	if err := c.getJSON(ctx, path, &details); err != nil {
		return nil, err
	}
	return details, nil
}

func (c *Client) DownloadOriginal(ctx context.Context, activityID int64) ([]byte, error) {
	resp, err := c.do(ctx, fmt.Sprintf("/download-service/files/activity/%d", activityID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Err: fmt.Errorf("read activity download: %w", err)}
	}
	return data, nil
}

func (c *Client) HRVData(ctx context.Context, date string) (any, error) {
	var payload any
	if err := c.getJSON(ctx, "/hrv-service/hrv/"+date, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) RHRDay(ctx context.Context, date string) (any, error) {
	q := url.Values{}
	q.Set("fromDate", date)
	q.Set("untilDate", date)

	var payload any
	if err := c.getJSON(ctx, "/userstats-service/wellness/daily/rhr?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) HeartRates(ctx context.Context, date string) (map[string]any, error) {
	q := url.Values{}
	q.Set("date", date)

	var payload map[string]any
	if err := c.getJSON(ctx, "/wellness-service/wellness/dailyHeartRate?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (c *Client) SleepData(ctx context.Context, date string) (map[string]any, error) {
	q := url.Values{}
	q.Set("date", date)

	var payload map[string]any
	if err := c.getJSON(ctx, "/wellness-service/wellness/dailySleepData?"+q.Encode(), &payload); err != nil {
		return nil, err
	}
	return payload, nil
}
