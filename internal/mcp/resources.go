package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lostmarbl3/f-ai/internal/models"
	"github.com/lostmarbl3/f-ai/internal/records"
	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	workouts, err := h.ds.ListWorkouts(ctx, "")
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -14)
	recent := make([]models.LoggedWorkout, 0, len(workouts))
	for _, w := range workouts {
		t, err := time.Parse(time.RFC3339, w.Date)
		if err != nil || t.Before(cutoff) {
			continue
		}
		recent = append(recent, w)
	}

	data, err := json.Marshal(recent)
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

func (h *handlers) personalRecords(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	history, err := h.ds.ListWorkouts(ctx, "")
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(records.PersonalRecords(history, 3))
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
