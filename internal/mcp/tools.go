package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/lostmarbl3/f-ai/internal/records"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("List logged workouts, newest first. Each entry includes the program, per-set logs (weights in kg), duration, and total volume."),
	mcp.WithString("client_id", mcp.Description("Filter by client. Omit for all clients.")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of workouts to return. Defaults to 20.")),
)

var toolGetWorkout = mcp.NewTool("get_workout",
	mcp.WithDescription("Get one logged workout by id, with full per-set detail."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Workout UUID")),
)

var toolGetPersonalRecords = mcp.NewTool("get_personal_records",
	mcp.WithDescription("Top sets per exercise ranked by estimated one-rep max (Epley). Only completed sets with weight and reps qualify."),
	mcp.WithString("client_id", mcp.Description("Filter by client. Omit for all clients.")),
	mcp.WithNumber("per_exercise", mcp.Description("Records per exercise. Defaults to 3.")),
)

var toolGetExerciseProgress = mcp.NewTool("get_exercise_progress",
	mcp.WithDescription("Per-workout heaviest completed set for one exercise, oldest first. Useful for progression charts."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (exact match, e.g. 'Bench Press')")),
	mcp.WithString("client_id", mcp.Description("Filter by client. Omit for all clients.")),
)

var toolGetTrainingVolume = mcp.NewTool("get_training_volume",
	mcp.WithDescription("Weekly training volume (sum of weight x reps in kg), bucketed by Monday-anchored weeks."),
	mcp.WithString("client_id", mcp.Description("Filter by client. Omit for all clients.")),
)

var toolGetInProgressWorkout = mcp.NewTool("get_in_progress_workout",
	mcp.WithDescription("The resumable in-progress workout snapshot for a client and program, if one exists."),
	mcp.WithString("client_id", mcp.Required(), mcp.Description("Client id")),
	mcp.WithString("program_id", mcp.Required(), mcp.Description("Program id")),
)

// --- Tool handlers ---

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientID := req.GetString("client_id", "")
	limit := req.GetInt("limit", 20)
	if limit < 1 {
		limit = 20
	}

	workouts, err := h.ds.ListWorkouts(ctx, clientID)
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if len(workouts) > limit {
		workouts = workouts[:limit]
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout id: " + err.Error()), nil
	}

	workout, err := h.ds.GetWorkout(ctx, id)
	if err != nil {
		h.log.Error("mcp get_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workout)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPersonalRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientID := req.GetString("client_id", "")
	perExercise := req.GetInt("per_exercise", 3)

	history, err := h.ds.ListWorkouts(ctx, clientID)
	if err != nil {
		h.log.Error("mcp get_personal_records", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	recs := records.PersonalRecords(history, perExercise)
	result, err := mcp.NewToolResultJSON(recs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getExerciseProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	history, err := h.ds.ListWorkouts(ctx, req.GetString("client_id", ""))
	if err != nil {
		h.log.Error("mcp get_exercise_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	points := records.Progress(history, exercise)
	result, err := mcp.NewToolResultJSON(points)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTrainingVolume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	history, err := h.ds.ListWorkouts(ctx, req.GetString("client_id", ""))
	if err != nil {
		h.log.Error("mcp get_training_volume", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	buckets := records.WeeklyVolume(history)
	result, err := mcp.NewToolResultJSON(buckets)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getInProgressWorkout(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	clientID, err := req.RequireString("client_id")
	if err != nil {
		return mcp.NewToolResultError("client_id parameter is required"), nil
	}
	programID, err := req.RequireString("program_id")
	if err != nil {
		return mcp.NewToolResultError("program_id parameter is required"), nil
	}

	snap, err := h.ds.GetSnapshot(ctx, clientID, programID)
	if err != nil {
		h.log.Error("mcp get_in_progress_workout", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if snap == nil {
		return mcp.NewToolResultText("no in-progress workout for this client and program"), nil
	}

	result, err := mcp.NewToolResultJSON(snap)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
