package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitTrack", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitTrack workout tracking server. Query workout history, personal records, training volume, and in-progress sessions. Weights are stored in kilograms."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
		server.ServerTool{Tool: toolGetWorkout, Handler: h.getWorkout},
		server.ServerTool{Tool: toolGetPersonalRecords, Handler: h.getPersonalRecords},
		server.ServerTool{Tool: toolGetExerciseProgress, Handler: h.getExerciseProgress},
		server.ServerTool{Tool: toolGetTrainingVolume, Handler: h.getTrainingVolume},
		server.ServerTool{Tool: toolGetInProgressWorkout, Handler: h.getInProgressWorkout},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
		server.ServerResource{Resource: resPersonalRecords, Handler: h.personalRecords},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentWorkouts = mcp.NewResource(
	"fittrack://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Workouts logged in the last 14 days across all clients"),
	mcp.WithMIMEType("application/json"),
)

var resPersonalRecords = mcp.NewResource(
	"fittrack://personal_records",
	"Personal Records",
	mcp.WithResourceDescription("Top sets per exercise ranked by estimated one-rep max, across all clients"),
	mcp.WithMIMEType("application/json"),
)
