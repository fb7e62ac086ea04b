package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/seantiz/vigil/internal/actor"
	"github.com/seantiz/vigil/internal/scheduler"
)

// spawnActorRequest is the JSON body for POST /v1/actors.
type spawnActorRequest struct {
	Name       string `json:"name"`
	Behavior   string `json:"behavior"`
	DurationMS int    `json:"duration_ms"`
}

func (s *Server) handleListBehaviors(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.scheduler.Behaviors())
}

func (s *Server) handleSpawnActor(w http.ResponseWriter, r *http.Request) {
	var req spawnActorRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Behavior == "" {
		s.writeError(w, http.StatusBadRequest, "behavior is required")
		return
	}
	if req.DurationMS < 0 {
		s.writeError(w, http.StatusBadRequest, "duration_ms must not be negative")
		return
	}
	if req.Name == "" {
		req.Name = req.Behavior
	}

	params := actor.Params{Duration: time.Duration(req.DurationMS) * time.Millisecond}
	a, err := s.scheduler.Spawn(r.Context(), req.Name, req.Behavior, params)
	switch {
	case errors.Is(err, actor.ErrUnknownBehavior):
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, scheduler.ErrStopped):
		s.writeError(w, http.StatusServiceUnavailable, "scheduler is stopped")
		return
	case err != nil:
		s.logger.Error("spawn actor", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to spawn actor")
		return
	}

	s.writeJSON(w, http.StatusAccepted, a)
}
