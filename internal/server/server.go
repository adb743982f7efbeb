package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lostmarbl3/f-ai/internal/session"
	"github.com/lostmarbl3/f-ai/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    storage.Store
	sessions *session.Manager
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// disables authentication (tsnet deployments gate access at the network).
func New(store storage.Store, sessions *session.Manager, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		store:    store,
		sessions: sessions,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(APIKeyAuth(s.apiKey))
		}

		// Live sessions
		r.Post("/sessions", s.handleStartSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Delete("/sessions/{id}", s.handleAbandonSession)
		r.Post("/sessions/{id}/mutations", s.handleMutation)
		r.Post("/sessions/{id}/rest", s.handleStartRest)
		r.Delete("/sessions/{id}/rest", s.handleCancelRest)
		r.Post("/sessions/{id}/finish", s.handleFinishSession)
		r.Get("/in-progress", s.handleInProgress)

		// Workout history
		r.Get("/workouts", s.handleListWorkouts)
		r.Get("/workouts/{id}", s.handleGetWorkout)
		r.Patch("/workouts/{id}/feeling", s.handleUpdateFeeling)

		// Derived views
		r.Get("/records", s.handleRecords)
		r.Get("/progress", s.handleProgress)
		r.Get("/volume", s.handleVolume)

		// Calculators
		r.Get("/pace", s.handlePace)
		r.Get("/convert", s.handleConvertDistance)

		// Program catalog
		r.Get("/programs", s.handleListPrograms)
		r.Post("/programs", s.handleSaveProgram)
		r.Get("/programs/{id}", s.handleGetProgram)
		r.Delete("/programs/{id}", s.handleDeleteProgram)

		// Client roster
		r.Get("/clients", s.handleListClients)
		r.Post("/clients", s.handleSaveClient)
		r.Get("/clients/{id}", s.handleGetClient)
	})
}
