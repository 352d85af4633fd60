// Package store holds the in-process event log and session registry. Both
// collections share one lock so an append is visible in the global log and
// in the owning session at the same instant.
package store

import (
	"errors"
	"maps"
	"sync"
	"time"

	"conversion-analytics/internal/model"
)

// ErrSessionNotFound is returned when a session id is not registered.
var ErrSessionNotFound = errors.New("store: session not found")

// Store is the owned event log and session registry. The zero value is not
// usable; call New.
type Store struct {
	mu       sync.RWMutex
	events   []model.ConversionEvent
	sessions []*model.UserSession
	byID     map[string]*model.UserSession
}

// Snapshot is a consistent copy of the store taken under one read lock.
type Snapshot struct {
	Events   []model.ConversionEvent
	Sessions []model.UserSession
}

// New returns an empty store.
func New() *Store {
	return &Store{byID: make(map[string]*model.UserSession)}
}

// RegisterSession adds a session. Registering an id twice keeps both entries
// in the aggregate view; lookups by id resolve to the newer one.
func (s *Store) RegisterSession(session model.UserSession) {
	session.Events = nil

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = append(s.sessions, &session)
	s.byID[session.ID] = &session
}

// Append records event in the global log and in its session's sequence.
func (s *Store) Append(event model.ConversionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.byID[event.SessionID]
	if !ok {
		return ErrSessionNotFound
	}
	s.events = append(s.events, event)
	session.Events = append(session.Events, event)
	return nil
}

// CloseSession sets EndTime on an open session. It returns false when the
// session is unknown or already closed; the first EndTime is kept.
func (s *Store) CloseSession(id string, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.byID[id]
	if !ok || session.EndTime != nil {
		return false
	}
	session.EndTime = &at
	return true
}

// Session returns a copy of the session registered under id.
func (s *Store) Session(id string) (model.UserSession, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.byID[id]
	if !ok {
		return model.UserSession{}, false
	}
	return copySession(session), true
}

// Events returns a copy of the global log.
func (s *Store) Events() []model.ConversionEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ConversionEvent(nil), s.events...)
}

// Len returns the number of events and sessions.
func (s *Store) Len() (events, sessions int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), len(s.sessions)
}

// Snapshot copies both collections under a single read lock.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Events:   append([]model.ConversionEvent(nil), s.events...),
		Sessions: make([]model.UserSession, 0, len(s.sessions)),
	}
	for _, session := range s.sessions {
		snap.Sessions = append(snap.Sessions, copySession(session))
	}
	return snap
}

func copySession(session *model.UserSession) model.UserSession {
	out := *session
	out.Events = append([]model.ConversionEvent(nil), session.Events...)
	if session.EndTime != nil {
		end := *session.EndTime
		out.EndTime = &end
	}
	if session.Location != nil {
		loc := *session.Location
		out.Location = &loc
	}
	return out
}

// CloneData copies an event payload so later writes by the producer cannot
// change a recorded event.
func CloneData(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	return maps.Clone(data)
}
