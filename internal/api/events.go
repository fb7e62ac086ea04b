package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/seantiz/vigil/internal/model"
)

// listEventsResponse wraps the paginated event list.
type listEventsResponse struct {
	Events []*model.Event `json:"events"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// actorEventsResponse is the JSON response for GET /v1/actors/{id}/events.
type actorEventsResponse struct {
	ActorID string         `json:"actor_id"`
	Events  []*model.Event `json:"events"`
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", defaultListLimit)
	offset := parseIntQuery(r, "offset", 0)

	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	events, total, err := s.store.ListEvents(r.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list events", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []*model.Event{}
	}

	s.writeJSON(w, http.StatusOK, listEventsResponse{
		Events: events,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

func (s *Server) handleGetActorEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	events, err := s.store.ListActorEvents(r.Context(), id)
	if err != nil {
		s.logger.Error("list actor events", "actor_id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list actor events")
		return
	}
	if len(events) == 0 {
		s.writeError(w, http.StatusNotFound, "actor not found")
		return
	}

	s.writeJSON(w, http.StatusOK, actorEventsResponse{ActorID: id, Events: events})
}

func (s *Server) handleStreamEvents(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Disable write timeout for long-lived SSE connections.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		s.logger.Error("set write deadline for SSE", "error", err)
	}

	// A stopped scheduler hands back a closed channel, so the loop below
	// ends at once with a done event.
	ch, unsub := s.scheduler.Broker().Subscribe()
	defer unsub()

	w.WriteHeader(http.StatusOK)
	flusher, canFlush := w.(http.Flusher)
	if canFlush {
		flusher.Flush()
	}

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				_ = writeSSEEvent(w, "done", "scheduler stopped")
				if canFlush {
					flusher.Flush()
				}
				return
			}
			data, err := json.Marshal(e)
			if err != nil {
				s.logger.Error("encode event for SSE", "error", err)
				continue
			}
			if err := writeSSEEvent(w, e.Kind, string(data)); err != nil {
				return // Client gone.
			}
			if canFlush {
				flusher.Flush()
			}
		case <-r.Context().Done():
			return
		}
	}
}

// writeSSEEvent writes a named SSE event (event: <type>\ndata: <data>\n\n).
func writeSSEEvent(w http.ResponseWriter, eventType, data string) error {
	if _, err := fmt.Fprintf(w, "event: %s\n", eventType); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
