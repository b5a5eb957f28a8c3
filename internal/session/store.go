// Package session keeps one signature form and image controller per browser.
package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cristianadrielbraun/sigbake/internal/rebake"
	"github.com/cristianadrielbraun/sigbake/internal/signature"
)

// Session is the editing state of one browser.
type Session struct {
	ID     string
	Form   *signature.Form
	Images *rebake.Controller

	// edit orders card edits with the re-bakes they trigger.
	edit sync.Mutex
}

// Edit merges p into the card and, when the brand colour changed, re-bakes
// the remembered portrait in the new colour. Edits of one session run one at
// a time, so the last colour written to the card is also the last one baked.
// The Result is nil when nothing was re-baked.
func (s *Session) Edit(ctx context.Context, p signature.Patch) (*rebake.Result, error) {
	s.edit.Lock()
	defer s.edit.Unlock()

	changed, err := s.Form.Patch(p)
	if err != nil || !changed {
		return nil, err
	}
	brand, err := signature.ParseHex(s.Form.Snapshot().BrandColor)
	if err != nil {
		return nil, err
	}
	return s.Images.ColorChange(ctx, brand)
}

// Builder creates the state for a new session id.
type Builder func(id string) *Session

type entry struct {
	session  *Session
	lastSeen time.Time
}

// Store holds sessions in memory and forgets them after ttl of inactivity.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	build    Builder
	now      func() time.Time
}

// NewStore returns an empty store.
func NewStore(ttl time.Duration, build Builder) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		build:    build,
		now:      time.Now,
	}
}

// Get returns the live session for id and refreshes its expiry.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(e.lastSeen) > s.ttl {
		delete(s.sessions, id)
		return nil, false
	}
	e.lastSeen = now
	return e.session, true
}

// Create starts a session under a fresh random id.
func (s *Store) Create() *Session {
	id := uuid.NewString()
	sess := s.build(id)
	sess.ID = id

	s.mu.Lock()
	s.sessions[id] = &entry{session: sess, lastSeen: s.now()}
	s.mu.Unlock()
	log.Printf("[session] created %s", id)
	return sess
}

// GetOrCreate returns the session for id, creating a new one when id is
// unknown or expired. The bool reports whether a session was created.
func (s *Store) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if sess, ok := s.Get(id); ok {
			return sess, false
		}
	}
	return s.Create(), true
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Printf("[session] expired %d sessions", n)
			}
		}
	}
}
