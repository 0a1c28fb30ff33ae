package screen

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MarkerStore issues one-shot print markers. A marker requests an
// automatic print of one record and is removed the first time it is
// presented, so reloading the page does not print again.
type MarkerStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	markers map[string]marker
}

type marker struct {
	target  string
	expires time.Time
}

// NewMarkerStore creates a store whose markers expire after ttl
func NewMarkerStore(ttl time.Duration) *MarkerStore {
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return &MarkerStore{ttl: ttl, now: time.Now, markers: make(map[string]marker)}
}

// Issue creates a marker for entity/id
func (s *MarkerStore) Issue(entity, id string) string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.markers[token] = marker{target: entity + "/" + id, expires: s.now().Add(s.ttl)}
	return token
}

// Consume reports whether token is a live marker for entity/id. The marker
// is removed whatever the answer.
func (s *MarkerStore) Consume(token, entity, id string) bool {
	if token == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.markers[token]
	delete(s.markers, token)
	return ok && m.target == entity+"/"+id && s.now().Before(m.expires)
}

// Len returns the number of live markers
func (s *MarkerStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.markers)
}

func (s *MarkerStore) sweepLocked() {
	now := s.now()
	for k, m := range s.markers {
		if !now.Before(m.expires) {
			delete(s.markers, k)
		}
	}
}
