package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/narayan-iyengar/scope/pkg/engine"
	scopeerrors "github.com/narayan-iyengar/scope/pkg/errors"
	"github.com/narayan-iyengar/scope/pkg/render"
	"github.com/narayan-iyengar/scope/pkg/session"
)

// =============================================================================
// Engine endpoints
// =============================================================================

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.engine.CurrentGraphState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePostTopology(w http.ResponseWriter, r *http.Request) {
	var snap engine.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, scopeerrors.Wrap(scopeerrors.ErrCodeInvalidInput, err, "decode snapshot"))
		return
	}

	s.mu.Lock()
	err := s.engine.Transition(r.Context(), engine.InputChanged{Snapshot: snap})
	state := s.engine.CurrentGraphState()
	s.mu.Unlock()

	if err != nil {
		// A failed layout keeps the previous graph; the client gets the
		// stale-but-valid state along with the error code.
		s.logger.Error("layout failed", "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error": scopeerrors.UserMessage(err),
			"code":  scopeerrors.GetCode(err),
			"state": state,
		})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePostGesture(w http.ResponseWriter, r *http.Request) {
	var g engine.Gesture
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeError(w, http.StatusBadRequest, scopeerrors.Wrap(scopeerrors.ErrCodeInvalidGesture, err, "decode gesture"))
		return
	}

	s.mu.Lock()
	_ = s.engine.Transition(r.Context(), g)
	state := s.engine.CurrentGraphState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handlePostSelection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NodeID      string   `json:"nodeId"`
		AdjacentIDs []string `json:"adjacentIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, scopeerrors.Wrap(scopeerrors.ErrCodeInvalidInput, err, "decode selection"))
		return
	}

	s.mu.Lock()
	_ = s.engine.Transition(r.Context(), engine.SelectionChanged{
		NodeID:      body.NodeID,
		AdjacentIDs: body.AdjacentIDs,
	})
	state := s.engine.CurrentGraphState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleSwitchTopology(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TopologyID string `json:"topologyId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, scopeerrors.Wrap(scopeerrors.ErrCodeInvalidTopology, err, "decode switch"))
		return
	}

	s.mu.Lock()
	_ = s.engine.Transition(r.Context(), engine.TopologyChanged{TopologyID: body.TopologyID})
	state := s.engine.CurrentGraphState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

// =============================================================================
// Export endpoints
// =============================================================================

func (s *Server) handleExportDOT(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.engine.CurrentGraphState()
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(render.ToDOT(state)))
}

func (s *Server) handleExportSVG(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	state := s.engine.CurrentGraphState()
	s.mu.Unlock()

	svg, err := render.RenderSVG(render.ToDOT(state))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// =============================================================================
// Session endpoints
// =============================================================================

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	// An empty body is fine: anonymous session.
	_ = json.NewDecoder(r.Body).Decode(&body)
	if body.UserID == "" {
		body.UserID = "anonymous"
	}

	s.mu.Lock()
	sess := session.New(body.UserID, s.sessionTTL)
	sess.Viewport = s.engine.Viewport().State()
	sess.ZoomCache = s.engine.Viewport().Cache()
	state := s.engine.CurrentGraphState()
	sess.TopologyID = state.TopologyID
	s.mu.Unlock()

	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, http.StatusInternalServerError, scopeerrors.Wrap(scopeerrors.ErrCodeStore, err, "save session"))
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleRestoreSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.loadSession(w, r)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.engine.Viewport().RestoreCache(sess.ZoomCache)
	s.engine.Viewport().SetState(sess.Viewport)
	state := s.engine.CurrentGraphState()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, scopeerrors.Wrap(scopeerrors.ErrCodeStore, err, "delete session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// loadSession fetches the session from the URL id, writing the error
// response itself on failure.
func (s *Server) loadSession(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	switch {
	case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrExpired):
		writeError(w, http.StatusNotFound, scopeerrors.New(scopeerrors.ErrCodeSessionNotFound, "session %q", id))
		return nil, err
	case err != nil:
		writeError(w, http.StatusInternalServerError, scopeerrors.Wrap(scopeerrors.ErrCodeStore, err, "load session"))
		return nil, err
	}
	return sess, nil
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{
		"error": scopeerrors.UserMessage(err),
		"code":  scopeerrors.GetCode(err),
	})
}
