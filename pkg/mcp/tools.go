package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/MartinT518/apex-sync/pkg/domain/fitstream"
	"github.com/MartinT518/apex-sync/pkg/sync"
)

// --- Tool definitions ---

var toolSyncActivities = mcp.NewTool("sync_activities",
	mcp.WithDescription("Sync Garmin Connect activities for an inclusive date range. Returns normalized activity records with reconciled durations and their source fields."),
	mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date (YYYY-MM-DD)")),
	mcp.WithString("end_date", mcp.Required(), mcp.Description("End date (YYYY-MM-DD, inclusive)")),
)

var toolSyncWellness = mcp.NewTool("sync_wellness",
	mcp.WithDescription("Sync per-day wellness data (overnight HRV, resting heart rate, sleep duration and score) for an inclusive date range. Emits one entry per calendar day, with null fields where fetches failed."),
	mcp.WithString("start_date", mcp.Required(), mcp.Description("Start date (YYYY-MM-DD)")),
	mcp.WithString("end_date", mcp.Required(), mcp.Description("End date (YYYY-MM-DD, inclusive)")),
)

var toolGetActivityFitStream = mcp.NewTool("get_activity_fit_stream",
	mcp.WithDescription("Download an activity's original FIT recording and decode the raw per-sample stream (timestamp, heart_rate, cadence, speed, distance) without API smoothing."),
	mcp.WithNumber("activity_id", mcp.Required(), mcp.Description("Garmin activity ID")),
)

// --- Tool handlers ---

func (h *handlers) syncActivities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startDate, err := req.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultError("start_date parameter is required"), nil
	}
	endDate, err := req.RequireString("end_date")
	if err != nil {
		return mcp.NewToolResultError("end_date parameter is required"), nil
	}

	batch, err := sync.SyncActivities(ctx, h.api, startDate, endDate, sync.Options{
		ItemDelay: h.detailDelay(),
		Logger:    h.log,
	})
	if err != nil {
		return toolError(err), nil
	}
	return resultJSON(batch)
}

func (h *handlers) syncWellness(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	startDate, err := req.RequireString("start_date")
	if err != nil {
		return mcp.NewToolResultError("start_date parameter is required"), nil
	}
	endDate, err := req.RequireString("end_date")
	if err != nil {
		return mcp.NewToolResultError("end_date parameter is required"), nil
	}

	batch, err := sync.SyncWellness(ctx, h.api, startDate, endDate, sync.Options{
		ItemDelay: h.wellnessDelay(),
		Logger:    h.log,
	})
	if err != nil {
		return toolError(err), nil
	}
	return resultJSON(batch)
}

func (h *handlers) getActivityFitStream(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idFloat, err := req.RequireFloat("activity_id")
	if err != nil {
		return mcp.NewToolResultError("activity_id parameter is required"), nil
	}
	activityID := int64(idFloat)

	archive, err := h.api.DownloadOriginal(ctx, activityID)
	if err != nil {
		return toolError(err), nil
	}

	points, err := fitstream.Decode(archive)
	if err != nil {
		h.log.Error("mcp get_activity_fit_stream decode", "activity_id", activityID, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	return resultJSON(fitstream.NewEnvelope(points, activityID))
}

func (h *handlers) wellnessDelay() time.Duration {
	if h.cfg != nil {
		return h.cfg.WellnessDelay
	}
	return 0
}

func (h *handlers) detailDelay() time.Duration {
	if h.cfg != nil {
		return h.cfg.DetailDelay
	}
	return 0
}

func toolError(err error) *mcp.CallToolResult {
	kind, msg := sync.Classify(err)
	return mcp.NewToolResultError(string(kind) + ": " + msg)
}

func resultJSON(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
