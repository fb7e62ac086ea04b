package api

import (
	"encoding/json"
	"net/http"
)

// pendingBody is the JSON body for GET and PUT /v1/pending.
type pendingBody struct {
	Pending *int64 `json:"pending"`
}

// reclaimResponse is the JSON response for POST /v1/reclaim.
type reclaimResponse struct {
	Reclaimed int   `json:"reclaimed"`
	Pending   int64 `json:"pending"`
	Quiescent bool  `json:"quiescent"`
}

func (s *Server) handleGetStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.scheduler.Status())
}

func (s *Server) handleGetPending(w http.ResponseWriter, _ *http.Request) {
	n := s.scheduler.PendingCount()
	s.writeJSON(w, http.StatusOK, pendingBody{Pending: &n})
}

// handleSetPending overwrites the pending count. The value is not checked,
// so an operator can settle accounting restored from a previous process.
func (s *Server) handleSetPending(w http.ResponseWriter, r *http.Request) {
	var req pendingBody
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Pending == nil {
		s.writeError(w, http.StatusBadRequest, "pending is required")
		return
	}

	s.scheduler.SetPendingCount(*req.Pending)
	s.logger.Warn("pending count set via API", "pending", *req.Pending)

	n := s.scheduler.PendingCount()
	s.writeJSON(w, http.StatusOK, pendingBody{Pending: &n})
}

func (s *Server) handleReclaim(w http.ResponseWriter, r *http.Request) {
	n, st := s.scheduler.Poll(r.Context())
	s.writeJSON(w, http.StatusOK, reclaimResponse{
		Reclaimed: n,
		Pending:   st.Pending,
		Quiescent: st.Quiescent,
	})
}
