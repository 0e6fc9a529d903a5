package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) currentSession(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	state, err := h.ds.State(ctx)
	if err != nil {
		return nil, err
	}

	progress, err := h.ds.AllProgress(ctx)
	if err != nil {
		h.log.Warn("current_session: progress query failed", "error", err)
	}

	data, err := json.Marshal(map[string]any{
		"days":     state,
		"progress": progress,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) catalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	plans, err := h.ds.Plans(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(plans)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
