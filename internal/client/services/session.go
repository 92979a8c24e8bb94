package services

import (
	"sync"
	"time"
)

// Session is the process-local authentication state. It is never persisted.
type Session struct {
	mu            sync.RWMutex
	authenticated bool
	username      string
	lastActivity  time.Time
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// Username is the last user that authenticated. It survives Revoke so a
// lock challenge knows whom to re-authenticate.
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

func (s *Session) LastActivity() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActivity
}

// Touch records user activity at t.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	s.lastActivity = t
	s.mu.Unlock()
}

func (s *Session) grant(username string, t time.Time) {
	s.mu.Lock()
	s.authenticated = true
	s.username = username
	s.lastActivity = t
	s.mu.Unlock()
}

// Revoke drops the authenticated flag but keeps the username.
func (s *Session) Revoke() {
	s.mu.Lock()
	s.authenticated = false
	s.mu.Unlock()
}

// Reset returns the session to its initial unauthenticated state.
func (s *Session) Reset() {
	s.mu.Lock()
	s.authenticated = false
	s.username = ""
	s.lastActivity = time.Time{}
	s.mu.Unlock()
}
