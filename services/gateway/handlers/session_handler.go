package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RuvinSL/token-estimator/pkg/estimator"
	"github.com/RuvinSL/token-estimator/pkg/interfaces"
	"github.com/RuvinSL/token-estimator/pkg/logger"
	"github.com/RuvinSL/token-estimator/pkg/models"
	"github.com/gorilla/mux"
)

const maxFormBodySize = 1 << 20

// SessionState is the JSON body returned for a session. It flattens the
// controller snapshot and adds the rendered result view.
type SessionState struct {
	SessionID string `json:"session_id"`
	estimator.Snapshot
	View *estimator.ResultView `json:"view,omitempty"`
}

func newSessionState(id string, snap estimator.Snapshot) SessionState {
	return SessionState{
		SessionID: id,
		Snapshot:  snap,
		View:      estimator.NewResultView(snap.Result, snap.Form.Mode),
	}
}

type formRequest struct {
	Mode      string   `json:"mode"`
	MainURL   string   `json:"main_url"`
	OtherURLs []string `json:"other_urls"`
	BatchURLs string   `json:"batch_urls"`
}

type SessionHandler struct {
	store  *SessionStore
	logger interfaces.Logger
}

func NewSessionHandler(store *SessionStore, logger interfaces.Logger) *SessionHandler {
	return &SessionHandler{
		store:  store,
		logger: logger,
	}
}

func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	session := h.store.Create()
	writeJSON(w, h.logger, http.StatusCreated, newSessionState(session.ID, session.Controller.Snapshot()))
}

func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, newSessionState(session.ID, session.Controller.Snapshot()))
}

func (h *SessionHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}
	log := logger.WithContext(r.Context(), h.logger).With("session_id", session.ID)

	var req formRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBodySize)).Decode(&req); err != nil {
		log.Warn("Failed to parse form", "error", err)
		sendError(w, h.logger, "Invalid request format", http.StatusBadRequest)
		return
	}

	mode, err := models.ParseMode(req.Mode)
	if err != nil {
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
		return
	}

	err = session.Controller.SetForm(estimator.Form{
		Mode:       mode,
		MainURL:    req.MainURL,
		ManualURLs: req.OtherURLs,
		BatchText:  req.BatchURLs,
	})
	if err != nil {
		h.sendControllerError(w, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, newSessionState(session.ID, session.Controller.Snapshot()))
}

// Analyze starts an analysis and answers before the service does. Progress
// is read through GetSession or the stream.
func (h *SessionHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	if err := session.Controller.Start(r.Context()); err != nil {
		h.sendControllerError(w, err)
		return
	}

	writeJSON(w, h.logger, http.StatusAccepted, newSessionState(session.ID, session.Controller.Snapshot()))
}

func (h *SessionHandler) Report(w http.ResponseWriter, r *http.Request) {
	session, ok := h.lookup(w, r)
	if !ok {
		return
	}

	snap := session.Controller.Snapshot()
	if snap.Result == nil {
		sendError(w, h.logger, "No analysis result available", http.StatusNotFound)
		return
	}

	var buf bytes.Buffer
	if err := estimator.RenderReport(&buf, snap.Result, snap.Form.Mode); err != nil {
		logger.WithError(h.logger, err).Error("Failed to render report", "session_id", session.ID)
		sendError(w, h.logger, "Failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.store.Delete(mux.Vars(r)["id"]) {
		sendError(w, h.logger, "Session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) ListModes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, models.Modes)
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	session, ok := h.store.Get(mux.Vars(r)["id"])
	if !ok {
		sendError(w, h.logger, "Session not found", http.StatusNotFound)
	}
	return session, ok
}

func (h *SessionHandler) sendControllerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, estimator.ErrAnalysisInFlight):
		sendError(w, h.logger, err.Error(), http.StatusConflict)
	case errors.Is(err, estimator.ErrNoURLs):
		sendError(w, h.logger, estimator.NoURLsMessage, http.StatusUnprocessableEntity)
	case errors.Is(err, estimator.ErrClosed):
		sendError(w, h.logger, "Session not found", http.StatusNotFound)
	default:
		sendError(w, h.logger, err.Error(), http.StatusBadRequest)
	}
}
