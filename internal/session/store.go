// Package session manages conversation sessions, each owning its own
// context engine.
package session

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skellner/converse/internal/engine"
)

// ErrSessionNotFound is returned when a session id is unknown.
var ErrSessionNotFound = errors.New("session not found")

// Session is one active conversation with its context engine.
type Session struct {
	ID        string                `json:"id"`
	CreatedAt time.Time             `json:"created_at"`
	Engine    *engine.ContextEngine `json:"-"`
}

// Info is the listing view of a session.
type Info struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Turns     int       `json:"turns"`
}

// Store holds the active sessions. Safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	newEngine func() *engine.ContextEngine
}

// NewStore creates a session store. newEngine builds the context engine for
// each created session.
func NewStore(newEngine func() *engine.ContextEngine) *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		newEngine: newEngine,
	}
}

// Create starts a new session with a fresh context engine.
func (s *Store) Create() *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Engine:    s.newEngine(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess
}

// Get returns the session with the given id.
func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Destroy removes a session. Returns ErrSessionNotFound for unknown ids.
func (s *Store) Destroy(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// List returns summaries of all active sessions, oldest first.
func (s *Store) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]Info, 0, len(s.sessions))
	for _, sess := range s.sessions {
		infos = append(infos, Info{
			ID:        sess.ID,
			CreatedAt: sess.CreatedAt,
			Turns:     sess.Engine.TurnCount(),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.Before(infos[j].CreatedAt)
	})
	return infos
}

// Count returns the number of active sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
