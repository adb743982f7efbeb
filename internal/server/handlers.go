package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lostmarbl3/f-ai/internal/models"
	"github.com/lostmarbl3/f-ai/internal/records"
	"github.com/lostmarbl3/f-ai/internal/session"
	"github.com/lostmarbl3/f-ai/internal/storage"
)

type startSessionRequest struct {
	ClientID  string `json:"clientId"`
	ProgramID string `json:"programId"`
	Resume    bool   `json:"resume"`
	Discard   bool   `json:"discard"`
}

type sessionResponse struct {
	SessionID string                   `json:"sessionId"`
	Snapshot  models.InProgressWorkout `json:"snapshot"`
	Rest      *session.RestState       `json:"rest,omitempty"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.ClientID == "" || req.ProgramID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "clientId and programId required"})
		return
	}

	program, err := s.store.GetProgram(r.Context(), req.ProgramID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	client, err := s.store.GetClient(r.Context(), req.ClientID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "client not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	sess, err := s.sessions.Start(r.Context(), *program, *client, session.StartOptions{
		Resume:  req.Resume,
		Discard: req.Discard,
	})
	if err != nil {
		switch {
		case errors.Is(err, session.ErrSnapshotExists):
			// The client must choose resume or discard and retry.
			writeJSON(w, http.StatusConflict, map[string]any{
				"error":      err.Error(),
				"inProgress": true,
			})
		case errors.Is(err, session.ErrActiveSession):
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		default:
			s.log.Error("session start error", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID().String(),
		Snapshot:  sess.Snapshot(),
	})
}

// liveSession resolves the {id} URL parameter to a live session, writing
// the error response itself when resolution fails.
func (s *Server) liveSession(w http.ResponseWriter, r *http.Request) (*session.Session, uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return nil, uuid.Nil, false
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, uuid.Nil, false
	}
	return sess, id, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		SessionID: sess.ID().String(),
		Snapshot:  sess.Snapshot(),
		Rest:      sess.RestState(),
	})
}

func (s *Server) handleAbandonSession(w http.ResponseWriter, r *http.Request) {
	_, id, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	if err := s.sessions.Abandon(id); err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type mutationRequest struct {
	Kind     string         `json:"kind"`
	Section  models.Section `json:"section,omitempty"`
	Exercise int            `json:"exercise"`
	Set      int            `json:"set"`
	Cardio   int            `json:"cardio"`
	Value    string         `json:"value"`
	Text     string         `json:"text"`
	Unit     string         `json:"unit"`
}

// decodeMutation maps the wire request onto one of the closed mutation
// variants.
func decodeMutation(req mutationRequest) (session.Mutation, error) {
	switch req.Kind {
	case "setWeight":
		unit := models.WeightUnit(req.Unit)
		if unit == "" {
			unit = models.UnitKg
		}
		if unit != models.UnitKg && unit != models.UnitLbs {
			return nil, fmt.Errorf("unknown weight unit %q", req.Unit)
		}
		return session.SetWeight{Section: req.Section, Exercise: req.Exercise, Set: req.Set, Value: req.Value, Unit: unit}, nil
	case "setReps":
		return session.SetReps{Section: req.Section, Exercise: req.Exercise, Set: req.Set, Value: req.Value}, nil
	case "setRpe":
		return session.SetRPE{Section: req.Section, Exercise: req.Exercise, Set: req.Set, Value: req.Value}, nil
	case "setNote":
		return session.SetNote{Section: req.Section, Exercise: req.Exercise, Text: req.Text}, nil
	case "toggleComplete":
		return session.ToggleComplete{Section: req.Section, Exercise: req.Exercise, Set: req.Set}, nil
	case "setCardioTime":
		return session.SetCardioTime{Cardio: req.Cardio, Value: req.Value}, nil
	case "setCardioDistance":
		return session.SetCardioDistance{Cardio: req.Cardio, Value: req.Value}, nil
	case "setCardioUnit":
		return session.SetCardioUnit{Cardio: req.Cardio, Unit: models.DistanceUnit(req.Unit)}, nil
	}
	return nil, fmt.Errorf("unknown mutation kind %q", req.Kind)
}

func (s *Server) handleMutation(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.liveSession(w, r)
	if !ok {
		return
	}

	var req mutationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	m, err := decodeMutation(req)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res := sess.Apply(r.Context(), m)
	writeJSON(w, http.StatusOK, map[string]any{
		"result": res,
		"rest":   sess.RestState(),
	})
}

type startRestRequest struct {
	Section  models.Section `json:"section"`
	Exercise int            `json:"exercise"`
	Set      int            `json:"set"`
}

func (s *Server) handleStartRest(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.liveSession(w, r)
	if !ok {
		return
	}

	var req startRestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	res := sess.StartRest(req.Section, req.Exercise, req.Set)
	writeJSON(w, http.StatusOK, map[string]any{
		"result": res,
		"rest":   sess.RestState(),
	})
}

func (s *Server) handleCancelRest(w http.ResponseWriter, r *http.Request) {
	sess, _, ok := s.liveSession(w, r)
	if !ok {
		return
	}
	sess.CancelRest()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFinishSession(w http.ResponseWriter, r *http.Request) {
	_, id, ok := s.liveSession(w, r)
	if !ok {
		return
	}

	workout, err := s.sessions.Finish(r.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrFinished) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		// History write failed. The session stays live so the client can
		// retry without losing the log.
		s.log.Error("session finish error", "session_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleInProgress(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	programID := r.URL.Query().Get("program_id")
	if clientID == "" || programID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "client_id and program_id parameters required"})
		return
	}

	snap, err := s.sessions.InProgress(r.Context(), clientID, programID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"inProgress": snap != nil,
		"snapshot":   snap,
	})
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	workouts, err := s.store.ListWorkouts(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workouts == nil {
		workouts = []models.LoggedWorkout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	workout, err := s.store.GetWorkout(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

var validFeelings = map[models.Feeling]bool{
	models.FeelingNone:      true,
	models.FeelingDifficult: true,
	models.FeelingOkay:      true,
	models.FeelingGreat:     true,
}

func (s *Server) handleUpdateFeeling(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	var req struct {
		Feeling models.Feeling `json:"feeling"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if !validFeelings[req.Feeling] {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("unknown feeling %q", req.Feeling)})
		return
	}

	if err := s.store.UpdateWorkoutFeeling(r.Context(), id, req.Feeling); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.ListWorkouts(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
	}

	recs := records.PersonalRecords(history, limit)
	if recs == nil {
		recs = []records.PersonalRecord{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	exercise := r.URL.Query().Get("exercise")
	if exercise == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise parameter required"})
		return
	}

	history, err := s.store.ListWorkouts(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	points := records.Progress(history, exercise)
	if points == nil {
		points = []records.ProgressPoint{}
	}
	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	history, err := s.store.ListWorkouts(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	buckets := records.WeeklyVolume(history)
	if buckets == nil {
		buckets = []records.VolumeBucket{}
	}
	writeJSON(w, http.StatusOK, buckets)
}

func (s *Server) handleListPrograms(w http.ResponseWriter, r *http.Request) {
	programs, err := s.store.ListPrograms(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if programs == nil {
		programs = []models.Program{}
	}
	writeJSON(w, http.StatusOK, programs)
}

func (s *Server) handleSaveProgram(w http.ResponseWriter, r *http.Request) {
	var p models.Program
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if p.ID == "" || p.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id and name required"})
		return
	}

	if err := s.store.SaveProgram(r.Context(), p); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetProgram(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProgram(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteProgram(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.store.ListClients(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (s *Server) handleSaveClient(w http.ResponseWriter, r *http.Request) {
	var c models.Client
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if c.ID == "" || c.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "id and name required"})
		return
	}

	if err := s.store.SaveClient(r.Context(), c); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleGetClient(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "client not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
