// Package session tracks per-call correlation state: caller metadata
// captured at call start, and the set of recording events already handled.
package session

import "sync"

// Caller holds metadata captured when a call session starts.
type Caller struct {
	PhoneNumber string `json:"phoneNumber,omitempty"`
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
}

// Store maps room names to caller metadata. Entries are written once at
// call initiation and consumed once when the matching recording event
// arrives. Safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	calls map[string]Caller
}

// NewStore creates an empty call-session store.
func NewStore() *Store {
	return &Store{calls: make(map[string]Caller)}
}

// Put registers caller metadata for a room, replacing any previous entry.
func (s *Store) Put(room string, c Caller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[room] = c
}

// Take returns the caller metadata for a room and removes the entry.
// The second return is false if no session was registered for the room.
func (s *Store) Take(room string) (Caller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.calls[room]
	if ok {
		delete(s.calls, room)
	}
	return c, ok
}

// Len returns the number of registered sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.calls)
}

// ProcessedSet remembers recording-event identifiers already accepted for
// processing. Entries are never removed: the identifier space is bounded
// by call volume and the set only exists to absorb the small burst of
// redelivered notifications per event. Safe for concurrent use.
type ProcessedSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewProcessedSet creates an empty set.
func NewProcessedSet() *ProcessedSet {
	return &ProcessedSet{seen: make(map[string]struct{})}
}

// MarkProcessed records the identifier and reports whether it was newly
// accepted. The check and insert are a single atomic step, which closes
// the race between near-simultaneous duplicate deliveries.
func (p *ProcessedSet) MarkProcessed(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, dup := p.seen[id]; dup {
		return false
	}
	p.seen[id] = struct{}{}
	return true
}

// Seen reports whether the identifier was already accepted.
func (p *ProcessedSet) Seen(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.seen[id]
	return ok
}
