package server

import (
	"net/http"
	"strconv"

	"github.com/lostmarbl3/f-ai/internal/models"
	"github.com/lostmarbl3/f-ai/internal/units"
)

type paceResponse struct {
	Distance    float64 `json:"distance"`
	TimeSeconds int     `json:"timeSeconds"`
	Time        string  `json:"time"`
	PaceSeconds float64 `json:"paceSeconds"`
	Pace        string  `json:"pace"`
}

// handlePace solves the pace triangle: given any two of distance, time
// (clock string), and pace (clock string per distance unit), it computes
// the third.
func (s *Server) handlePace(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var distance float64
	if v := q.Get("distance"); v != "" {
		var err error
		distance, err = strconv.ParseFloat(v, 64)
		if err != nil || distance < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "distance must be a non-negative number"})
			return
		}
	}
	timeSeconds := units.ParseClock(q.Get("time"))
	paceSeconds := float64(units.ParseClock(q.Get("pace")))

	given := 0
	for _, ok := range []bool{distance > 0, timeSeconds > 0, paceSeconds > 0} {
		if ok {
			given++
		}
	}
	if given < 2 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "provide two of distance, time, pace"})
		return
	}

	switch {
	case distance > 0 && timeSeconds > 0:
		paceSeconds = units.Pace(distance, timeSeconds)
	case distance > 0 && paceSeconds > 0:
		timeSeconds = units.PaceTime(distance, paceSeconds)
	default:
		distance = units.PaceDistance(timeSeconds, paceSeconds)
	}

	writeJSON(w, http.StatusOK, paceResponse{
		Distance:    distance,
		TimeSeconds: timeSeconds,
		Time:        units.FormatClock(timeSeconds),
		PaceSeconds: paceSeconds,
		Pace:        units.FormatClock(int(paceSeconds)),
	})
}

// handleConvertDistance converts a distance value between units.
func (s *Server) handleConvertDistance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	value, err := strconv.ParseFloat(q.Get("value"), 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "value must be a number"})
		return
	}
	from := models.DistanceUnit(q.Get("from"))
	to := models.DistanceUnit(q.Get("to"))
	if from == "" || to == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from and to units required"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"value":     value,
		"from":      from,
		"to":        to,
		"converted": units.ConvertDistance(value, from, to),
	})
}
