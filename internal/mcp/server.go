package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("setlog", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Personal workout log. Query the current session, per-day progress, finalized workout history, and derived analytics (streaks, personal records, weekly volume, progression suggestions)."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetProgress, Handler: h.getProgress},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
		server.ServerTool{Tool: toolGetStreak, Handler: h.getStreak},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetWeeklyVolume, Handler: h.getWeeklyVolume},
		server.ServerTool{Tool: toolGetSuggestions, Handler: h.getSuggestions},
		server.ServerTool{Tool: toolGetSummary, Handler: h.getSummary},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resCurrentSession, Handler: h.currentSession},
		server.ServerResource{Resource: resCatalog, Handler: h.catalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resCurrentSession = mcp.NewResource(
	"setlog://current_session",
	"Current Session",
	mcp.WithResourceDescription("Live session state for every training day, including per-set completion, weight, reps, and RPE, plus per-day progress"),
	mcp.WithMIMEType("application/json"),
)

var resCatalog = mcp.NewResource(
	"setlog://catalog",
	"Template Catalog",
	mcp.WithResourceDescription("The training-day templates: ordered blocks of exercises with set/rep prescriptions, categories, and rest suggestions"),
	mcp.WithMIMEType("application/json"),
)
