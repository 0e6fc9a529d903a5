package mcp

import (
	"context"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/meltforce/setlog/internal/models"
)

// --- Tool definitions ---

var toolGetProgress = mcp.NewTool("get_progress",
	mcp.WithDescription("Completion progress for training days: completed sets, total sets (modifier-adjusted), and percentage. Without a day parameter, returns every day."),
	mcp.WithString("day", mcp.Description("Day identifier (e.g. 'tuesday'). Omit for all days.")),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("Finalized workout sessions, most recent first. Each entry carries its date, day, completion counts, the full set-by-set snapshot, and the exercise name map active at save time."),
	mcp.WithString("limit", mcp.Description("Maximum number of entries to return. Defaults to 20; 0 returns all.")),
)

var toolGetStreak = mcp.NewTool("get_streak",
	mcp.WithDescription("Current workout streak: consecutive finalized sessions with no gap beyond the configured tolerance."),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Maximum weight ever logged per exercise name across all history."),
)

var toolGetWeeklyVolume = mcp.NewTool("get_weekly_volume",
	mcp.WithDescription("Workout counts and completed-set volume grouped by ISO week and training day."),
)

var toolGetSuggestions = mcp.NewTool("get_progression_suggestions",
	mcp.WithDescription("Load-increase suggestions for exercises whose recent logged RPEs all sit at or below the effort threshold."),
)

var toolGetSummary = mcp.NewTool("get_summary",
	mcp.WithDescription("Headline stats over the whole history: total workouts, total completed sets, average completion percentage, and current streak."),
)

// --- Tool handlers ---

func (h *handlers) getProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if day := req.GetString("day", ""); day != "" {
		p, err := h.ds.Progress(ctx, models.Day(day))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toolJSON(p)
	}

	all, err := h.ds.AllProgress(ctx)
	if err != nil {
		h.log.Error("mcp get_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(all)
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 20
	if v := req.GetString("limit", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return mcp.NewToolResultError("limit must be a non-negative integer"), nil
		}
		limit = n
	}

	entries, err := h.ds.History(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(entries)
}

func (h *handlers) getStreak(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	streak, err := h.ds.Streak(ctx)
	if err != nil {
		h.log.Error("mcp get_streak", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(map[string]int{"streak": streak})
}

func (h *handlers) getPersonalRecords(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prs, err := h.ds.PersonalRecords(ctx)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(prs)
}

func (h *handlers) getWeeklyVolume(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	buckets, err := h.ds.WeeklyVolume(ctx)
	if err != nil {
		h.log.Error("mcp get_weekly_volume", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(buckets)
}

func (h *handlers) getSuggestions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	suggestions, err := h.ds.Suggestions(ctx)
	if err != nil {
		h.log.Error("mcp get_progression_suggestions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(suggestions)
}

func (h *handlers) getSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	summary, err := h.ds.Summary(ctx)
	if err != nil {
		h.log.Error("mcp get_summary", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(summary)
}

// toolJSON wraps a value as a JSON tool result.
func toolJSON(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
