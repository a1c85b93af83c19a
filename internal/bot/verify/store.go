package verify

import (
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Request is the pending verification record, keyed by the ID of the review
// message that renders it.
type Request struct {
	UserID    snowflake.ID
	Username  string
	Link      string
	CreatedAt time.Time
}

// RequestStore is a thread-safe map of pending requests with expiring
// entries. Requests a moderator never acts on are swept after the TTL.
type RequestStore struct {
	mu      sync.RWMutex
	data    map[snowflake.ID]Request
	expires map[snowflake.ID]time.Time
	ttl     time.Duration
}

// NewRequestStore creates a store whose entries expire after ttl.
func NewRequestStore(ttl time.Duration) *RequestStore {
	s := &RequestStore{
		data:    make(map[snowflake.ID]Request),
		expires: make(map[snowflake.ID]time.Time),
		ttl:     ttl,
	}

	go s.cleanup()

	return s
}

// Get retrieves the request rendered by the given review message.
// Returns the request and whether it exists/is valid.
func (s *RequestStore) Get(messageID snowflake.ID) (Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, exists := s.data[messageID]
	if !exists {
		return Request{}, false
	}

	// Check if expired
	if time.Now().After(s.expires[messageID]) {
		return Request{}, false
	}

	return request, true
}

// Set records or updates a pending request.
func (s *RequestStore) Set(messageID snowflake.ID, request Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[messageID] = request
	s.expires[messageID] = time.Now().Add(s.ttl)
}

// Delete removes a request once it reaches a terminal state.
func (s *RequestStore) Delete(messageID snowflake.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, messageID)
	delete(s.expires, messageID)
}

// cleanup periodically removes expired entries.
func (s *RequestStore) cleanup() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()

		now := time.Now()
		for messageID, expires := range s.expires {
			if now.After(expires) {
				delete(s.data, messageID)
				delete(s.expires, messageID)
			}
		}

		s.mu.Unlock()
	}
}
