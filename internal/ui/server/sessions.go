package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/reviewsense/internal/view"
)

const sessionCookie = "reviewsense_session"

type session struct {
	controller *view.Controller
	lastSeen   time.Time
}

// sessionStore gives every browser its own review form.
type sessionStore struct {
	mu            sync.Mutex
	sessions      map[string]*session
	newController func() *view.Controller
	now           func() time.Time
}

func newSessionStore(newController func() *view.Controller) *sessionStore {
	return &sessionStore{
		sessions:      make(map[string]*session),
		newController: newController,
		now:           time.Now,
	}
}

// get returns the controller for id, creating a session under a fresh id when id is
// unknown. The returned id is the one the caller should hand back to the browser.
func (s *sessionStore) get(id string) (string, *view.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.lastSeen = s.now()
		return id, sess.controller
	}

	id = uuid.NewString()
	sess := &session{controller: s.newController(), lastSeen: s.now()}
	s.sessions[id] = sess
	slog.Debug("[Sessions] Created session", slog.String("session_id", id))
	return id, sess.controller
}

// sweep closes sessions idle for longer than idle. Sessions with a pending
// prediction are kept until it resolves.
func (s *sessionStore) sweep(idle time.Duration) int {
	s.mu.Lock()
	cutoff := s.now().Add(-idle)
	var expired []*view.Controller
	for id, sess := range s.sessions {
		if sess.lastSeen.After(cutoff) || sess.controller.Snapshot().Pending {
			continue
		}
		expired = append(expired, sess.controller)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, c := range expired {
		c.Close()
	}
	if len(expired) > 0 {
		slog.Info("[Sessions] Swept idle sessions", slog.Int("count", len(expired)))
	}
	return len(expired)
}

func (s *sessionStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *sessionStore) closeAll() {
	s.mu.Lock()
	all := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.controller.Close()
	}
}
