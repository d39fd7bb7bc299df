// Package session maps browser cookies to their page controllers.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"artifact-explorer/api/internal/explorer"
)

const CookieName = "explorer_sid"

// Store keeps at most capacity controllers; idle ones expire after ttl and
// are closed on eviction.
type Store struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *explorer.Controller]
	newFn func() *explorer.Controller
}

func NewStore(capacity int, ttl time.Duration, newFn func() *explorer.Controller) *Store {
	onEvict := func(_ string, c *explorer.Controller) {
		c.Close()
	}
	return &Store{
		cache: expirable.NewLRU[string, *explorer.Controller](capacity, onEvict, ttl),
		newFn: newFn,
	}
}

// Get returns the controller for id, creating one under a fresh id when id
// is empty, malformed or expired. The returned id is the one to set in the cookie.
func (s *Store) Get(id string) (string, *explorer.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if c, ok := s.cache.Get(id); ok {
			// refresh expiry
			s.cache.Add(id, c)
			return id, c
		}
	}
	id = uuid.NewString()
	c := s.newFn()
	s.cache.Add(id, c)
	return id, c
}

// Peek returns an existing controller without creating or refreshing it.
func (s *Store) Peek(id string) (*explorer.Controller, bool) {
	return s.cache.Peek(id)
}

func (s *Store) Len() int { return s.cache.Len() }

// Close evicts every session, stopping their loading timers.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
}
