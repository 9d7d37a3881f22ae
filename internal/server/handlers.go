package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/skellner/converse/internal/engine"
	"github.com/skellner/converse/internal/session"
	"github.com/skellner/converse/internal/storage"
	"github.com/skellner/converse/pkg/types"
)

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// TurnEvent is broadcast over the WebSocket hub after each processed turn.
type TurnEvent struct {
	Type      string      `json:"type"` // Always "turn_processed"
	SessionID string      `json:"session_id"`
	Turn      *types.Turn `json:"turn"`
}

// APIHandlers contains HTTP handlers for the REST API.
type APIHandlers struct {
	sessions *session.Store
	archive  storage.ArchiveStore // Optional, nil disables archive routes
	hub      *TurnHub             // Optional, nil disables broadcasts
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(sessions *session.Store, archive storage.ArchiveStore, hub *TurnHub) *APIHandlers {
	return &APIHandlers{
		sessions: sessions,
		archive:  archive,
		hub:      hub,
	}
}

// CreateSession handles POST /api/sessions - start a new conversation session.
func (h *APIHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.sessions.Create()
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":         sess.ID,
		"created_at": sess.CreatedAt,
	})
}

// ListSessions handles GET /api/sessions - list active sessions.
func (h *APIHandlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": h.sessions.List(),
		"total":    h.sessions.Count(),
	})
}

// DestroySession handles DELETE /api/sessions/{id}.
func (h *APIHandlers) DestroySession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.sessions.Destroy(id); err != nil {
		respondError(w, http.StatusNotFound, "session not found", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// turnRequest is the request payload for processing a turn.
type turnRequest struct {
	UserInput      string `json:"user_input"`
	SystemResponse string `json:"system_response,omitempty"`
}

// ProcessTurn handles POST /api/sessions/{id}/turns - run one exchange
// through the context pipeline.
func (h *APIHandlers) ProcessTurn(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if req.UserInput == "" {
		respondError(w, http.StatusBadRequest, "user_input is required", nil)
		return
	}

	turn, err := sess.Engine.ProcessTurn(r.Context(), req.UserInput, req.SystemResponse)
	if err != nil {
		// Degraded processing: the turn is still recorded and returned.
		w.Header().Set("X-Converse-Degraded", "true")
	}

	if h.hub != nil {
		h.hub.Broadcast(TurnEvent{Type: "turn_processed", SessionID: sess.ID, Turn: turn})
	}

	respondJSON(w, http.StatusOK, turn)
}

// GetEntityContext handles GET /api/sessions/{id}/entities/{text} - the
// aggregated cross-turn context for one entity.
func (h *APIHandlers) GetEntityContext(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	text := r.PathValue("text")
	ec, err := sess.Engine.ContextForEntity(text)
	if err != nil {
		if errors.Is(err, engine.ErrEntityNotFound) {
			respondError(w, http.StatusNotFound, fmt.Sprintf("entity %q not found", text), err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to build entity context", err)
		return
	}
	respondJSON(w, http.StatusOK, ec)
}

// GetRecentContext handles GET /api/sessions/{id}/recent?window=N.
func (h *APIHandlers) GetRecentContext(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	window := parseInt(r.URL.Query().Get("window"), 0)
	respondJSON(w, http.StatusOK, sess.Engine.RecentContext(window))
}

// ExportSession handles GET /api/sessions/{id}/export - the full session snapshot.
func (h *APIHandlers) ExportSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.session(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, sess.Engine.Export())
}

// ArchiveSession handles POST /api/sessions/{id}/archive - persist the
// session's export snapshot to the archive store.
func (h *APIHandlers) ArchiveSession(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		respondError(w, http.StatusNotImplemented, "archive storage not configured", nil)
		return
	}

	sess, ok := h.session(w, r)
	if !ok {
		return
	}

	payload, err := json.Marshal(sess.Engine.Export())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to serialize session", err)
		return
	}
	if err := h.archive.Save(r.Context(), sess.ID, payload); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to archive session", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"session_id": sess.ID,
		"archived":   true,
		"bytes":      len(payload),
	})
}

// ListArchive handles GET /api/archive - list archived session snapshots.
func (h *APIHandlers) ListArchive(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		respondError(w, http.StatusNotImplemented, "archive storage not configured", nil)
		return
	}

	summaries, err := h.archive.List(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list archive", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": summaries,
		"total":     len(summaries),
	})
}

// GetArchivedSession handles GET /api/archive/{id} - load one archived snapshot.
func (h *APIHandlers) GetArchivedSession(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		respondError(w, http.StatusNotImplemented, "archive storage not configured", nil)
		return
	}

	id := r.PathValue("id")
	snap, err := h.archive.Load(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "archived session not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to load archived session", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(snap.Payload)
}

// session resolves the {id} path value to an active session, writing a 404
// when it is unknown.
func (h *APIHandlers) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := h.sessions.Get(r.PathValue("id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "session not found", err)
		return nil, false
	}
	return sess, true
}

func parseInt(s string, defaultValue int) int {
	if s == "" {
		return defaultValue
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return val
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent, nothing more to do
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}
