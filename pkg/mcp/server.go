// Package mcp exposes the sync drivers and the raw FIT stream decoder as
// MCP tools, so agent callers get the same contracts as the CLIs.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/MartinT518/apex-sync/pkg/bootstrap"
	"github.com/MartinT518/apex-sync/pkg/integrations/garmin"
)

// New creates an MCP server with all tools registered.
func New(api garmin.API, cfg *bootstrap.Config, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("apex-sync", version,
		server.WithToolCapabilities(false),
		server.WithInstructions("Garmin Connect sync server. Sync normalized activity and wellness data for date ranges, and decode raw FIT sensor streams for individual activities."),
	)

	h := &handlers{api: api, cfg: cfg, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolSyncActivities, Handler: h.syncActivities},
		server.ServerTool{Tool: toolSyncWellness, Handler: h.syncWellness},
		server.ServerTool{Tool: toolGetActivityFitStream, Handler: h.getActivityFitStream},
	)

	return s
}

// handlers holds dependencies for MCP tool handlers.
type handlers struct {
	api garmin.API
	cfg *bootstrap.Config
	log *slog.Logger
}
