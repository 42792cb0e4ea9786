// Package session provides a process-local store for finished run state so a
// later request can continue the conversation where an earlier one ended.
//
// The store keeps deep copies of conversation contexts: callers on both sides
// of Put/Get own their instances and cannot corrupt stored state. Swap for a
// persistent backend when runs must survive a restart.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/safetymesh/safetymesh/core"
	"github.com/safetymesh/safetymesh/trace"
)

// ErrNotFound is returned when no session exists for the requested id.
var ErrNotFound = errors.New("session not found")

// Session is the continuation state of one finished run.
type Session struct {
	// ID keys the session; for safety analyses this is the video id.
	ID string `json:"id"`
	// AgentName is the agent that produced the final output, the natural
	// entry point for a follow-up turn.
	AgentName string `json:"agent_name"`
	// Context is the full conversation of the run.
	Context *core.Context `json:"-"`
	// Traces are the activation records of the run.
	Traces []trace.AgentTrace `json:"traces"`
	// UpdatedAt is when the session was last stored.
	UpdatedAt time.Time `json:"updated_at"`
}

// Store is an in-memory session store guarded by an RWMutex. Safe for
// concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]Session)}
}

// Put saves the continuation state of a run, replacing any previous session
// with the same id. The context is cloned so later mutations by the caller do
// not leak into the store.
func (s *Store) Put(id, agentName string, conv *core.Context, traces []trace.AgentTrace) {
	stored := Session{
		ID:        id,
		AgentName: agentName,
		UpdatedAt: time.Now(),
	}
	if conv != nil {
		stored.Context = conv.Clone()
	}
	if len(traces) > 0 {
		stored.Traces = make([]trace.AgentTrace, len(traces))
		copy(stored.Traces, traces)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = stored
}

// Get returns an independent copy of the stored session.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	stored, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return Session{}, ErrNotFound
	}

	out := stored
	if stored.Context != nil {
		out.Context = stored.Context.Clone()
	}
	if len(stored.Traces) > 0 {
		out.Traces = make([]trace.AgentTrace, len(stored.Traces))
		copy(out.Traces, stored.Traces)
	}
	return out, nil
}

// Delete removes a session. Deleting an absent id is not an error.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// IDs returns the stored session ids in unspecified order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		out = append(out, id)
	}
	return out
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
