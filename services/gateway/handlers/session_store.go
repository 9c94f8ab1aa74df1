package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/RuvinSL/token-estimator/pkg/estimator"
	"github.com/RuvinSL/token-estimator/pkg/interfaces"
	"github.com/google/uuid"
)

// ControllerFactory builds the controller backing a new session.
type ControllerFactory func() *estimator.Controller

// Session is one user's estimator, addressed by a random ID.
type Session struct {
	ID         string
	Controller *estimator.Controller
	CreatedAt  time.Time

	lastAccess atomic.Int64 // unix nanoseconds
	streams    atomic.Int32
	done       chan struct{}
}

// Done is closed when the session is deleted.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// LastAccess is the last time the session was looked up.
func (s *Session) LastAccess() time.Time {
	return time.Unix(0, s.lastAccess.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastAccess.Store(now.UnixNano())
}

// openStream marks the session as watched until the returned func is called.
func (s *Session) openStream() (closeStream func()) {
	s.streams.Add(1)
	return func() { s.streams.Add(-1) }
}

// idle reports whether the session can be reaped: nobody looked it up for
// ttl, no stream is attached and no analysis is running.
func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	if s.streams.Load() > 0 || now.Sub(s.LastAccess()) < ttl {
		return false
	}
	return !s.Controller.Snapshot().Loading
}

// SessionStore keeps the live sessions of the gateway.
type SessionStore struct {
	newController ControllerFactory
	logger        interfaces.Logger
	metrics       interfaces.MetricsCollector

	mu       sync.RWMutex
	sessions map[string]*Session

	now func() time.Time
}

func NewSessionStore(factory ControllerFactory, logger interfaces.Logger, metrics interfaces.MetricsCollector) *SessionStore {
	return &SessionStore{
		newController: factory,
		logger:        logger,
		metrics:       metrics,
		sessions:      make(map[string]*Session),
		now:           time.Now,
	}
}

func (s *SessionStore) Create() *Session {
	now := s.now()
	session := &Session{
		ID:         uuid.NewString(),
		Controller: s.newController(),
		CreatedAt:  now,
		done:       make(chan struct{}),
	}
	session.touch(now)

	s.mu.Lock()
	s.sessions[session.ID] = session
	count := len(s.sessions)
	s.mu.Unlock()

	s.metrics.SetSessions(count)
	s.logger.Info("Session created", "session_id", session.ID, "sessions", count)
	return session
}

// Get looks up a session and refreshes its idle timer.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if ok {
		session.touch(s.now())
	}
	return session, ok
}

// Delete removes the session and closes its controller, cancelling any
// in-flight analysis. It reports whether the session existed.
func (s *SessionStore) Delete(id string) bool {
	s.mu.Lock()
	session, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	count := len(s.sessions)
	s.mu.Unlock()

	if !ok {
		return false
	}

	close(session.done)
	session.Controller.Close()
	s.metrics.SetSessions(count)
	s.logger.Info("Session deleted", "session_id", id, "sessions", count)
	return true
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// ReapIdle deletes every session idle for at least ttl and returns how many
// were removed.
func (s *SessionStore) ReapIdle(ttl time.Duration) int {
	now := s.now()

	s.mu.RLock()
	var expired []string
	for id, session := range s.sessions {
		if session.idle(now, ttl) {
			expired = append(expired, id)
		}
	}
	s.mu.RUnlock()

	reaped := 0
	for _, id := range expired {
		if s.Delete(id) {
			reaped++
		}
	}
	if reaped > 0 {
		s.logger.Info("Reaped idle sessions", "reaped", reaped, "ttl", ttl)
	}
	return reaped
}

// RunReaper calls ReapIdle every interval until ctx is done.
func (s *SessionStore) RunReaper(ctx context.Context, ttl, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.ReapIdle(ttl)
		}
	}
}

// CloseAll deletes every session. Used on shutdown.
func (s *SessionStore) CloseAll() {
	s.mu.RLock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	for _, id := range ids {
		s.Delete(id)
	}
}
