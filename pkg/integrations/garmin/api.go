package garmin

import "context"

// API is the surface of the Garmin Connect client the sync drivers and MCP
// tools consume. Payloads are kept as decoded JSON (maps / raw values)
// because upstream shapes are not contractually stable; the metrics
// resolver deals with the variance.
type API interface {
	// ActivitiesByDate lists activity summaries for an inclusive date
	// range (YYYY-MM-DD), in upstream order.
	ActivitiesByDate(ctx context.Context, startDate, endDate string) ([]map[string]any, error)

	// Activity fetches the full detail object for one activity.
	Activity(ctx context.Context, activityID int64) (map[string]any, error)

	// DownloadOriginal fetches the activity's original upload as a ZIP
	// archive containing the device FIT recording.
	DownloadOriginal(ctx context.Context, activityID int64) ([]byte, error)

	// HRVData fetches the overnight HRV summary for one day. The result
	// may be an object or a bare number depending on API version.
	HRVData(ctx context.Context, date string) (any, error)

	// RHRDay fetches the dedicated resting-heart-rate value for one day.
	RHRDay(ctx context.Context, date string) (any, error)

	// HeartRates fetches the daily heart-rate summary for one day.
	HeartRates(ctx context.Context, date string) (map[string]any, error)

	// SleepData fetches the daily sleep summary for one day.
	SleepData(ctx context.Context, date string) (map[string]any, error)
}
