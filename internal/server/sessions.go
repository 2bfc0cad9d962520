package server

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/goliatone/go-regform/pkg/form"
)

// SessionCookie names the cookie carrying the session id.
const SessionCookie = "regform_session"

// Session holds the controllers of one browser. Requests that drive a
// controller hold the session lock so the controllers see one event at a
// time.
type Session struct {
	ID uuid.UUID

	mu          sync.Mutex
	controllers map[form.Variant]form.Controller
}

// Controller returns the controller serving variant.
func (s *Session) Controller(variant form.Variant) (form.Controller, bool) {
	ctrl, ok := s.controllers[variant]
	return ctrl, ok
}

// Sessions is the in-memory session registry.
type Sessions struct {
	build func() map[form.Variant]form.Controller

	mu   sync.Mutex
	byID map[uuid.UUID]*Session
}

// NewSessions builds a registry creating controllers with build.
func NewSessions(build func() map[form.Variant]form.Controller) *Sessions {
	return &Sessions{
		build: build,
		byID:  make(map[uuid.UUID]*Session),
	}
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Get returns the session with id.
func (s *Sessions) Get(id uuid.UUID) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[id]
	return sess, ok
}

// Resolve returns the session named by the request cookie, starting a new
// one and setting the cookie when the request carries none or an unknown
// id.
func (s *Sessions) Resolve(w http.ResponseWriter, r *http.Request) *Session {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			if sess, ok := s.Get(id); ok {
				return sess
			}
		}
	}

	sess := &Session{ID: uuid.New(), controllers: s.build()}
	s.mu.Lock()
	s.byID[sess.ID] = sess
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}
