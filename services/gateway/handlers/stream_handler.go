package handlers

import (
	"net/http"
	"time"

	"github.com/RuvinSL/token-estimator/pkg/estimator"
	"github.com/RuvinSL/token-estimator/pkg/interfaces"
	"github.com/RuvinSL/token-estimator/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	streamBuffer = 16
	writeWait    = 10 * time.Second
)

// StreamHandler pushes a session snapshot over a websocket after every
// state change, starting with the current one.
type StreamHandler struct {
	store    *SessionStore
	logger   interfaces.Logger
	upgrader websocket.Upgrader
}

func NewStreamHandler(store *SessionStore, logger interfaces.Logger) *StreamHandler {
	return &StreamHandler{
		store:  store,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	session, ok := h.store.Get(mux.Vars(r)["id"])
	if !ok {
		sendError(w, h.logger, "Session not found", http.StatusNotFound)
		return
	}
	log := logger.WithContext(r.Context(), h.logger).With("session_id", session.ID)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("Failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	closeStream := session.openStream()
	defer closeStream()

	updates := make(chan estimator.Snapshot, streamBuffer)
	unsubscribe := session.Controller.Subscribe(func(snap estimator.Snapshot) {
		offerLatest(updates, snap)
	})
	defer unsubscribe()

	// The client never sends anything; reading only surfaces the close.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	log.Debug("Stream opened")
	if err := h.write(conn, session.ID, session.Controller.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case snap := <-updates:
			if err := h.write(conn, session.ID, snap); err != nil {
				log.Debug("Stream write failed", "error", err)
				return
			}
		case <-session.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session deleted"),
				time.Now().Add(writeWait))
			return
		case <-disconnected:
			log.Debug("Stream closed by client")
			return
		}
	}
}

func (h *StreamHandler) write(conn *websocket.Conn, id string, snap estimator.Snapshot) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(newSessionState(id, snap))
}

// offerLatest queues snap without blocking the publisher. When the reader
// falls behind the oldest pending snapshot is dropped.
func offerLatest(ch chan estimator.Snapshot, snap estimator.Snapshot) {
	for {
		select {
		case ch <- snap:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
