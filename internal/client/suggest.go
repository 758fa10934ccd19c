package client

import (
	"context"
	"sync"
)

// Suggester serializes autocomplete lookups so only the newest query's
// results are delivered. Form fields fire a lookup per keystroke; answers
// can come back out of order, and a stale answer must never overwrite a
// fresher one.
type Suggester struct {
	client *Client

	mu  sync.Mutex
	seq uint64
}

// NewSuggester creates a suggester on top of a catalog client.
func NewSuggester(c *Client) *Suggester {
	return &Suggester{client: c}
}

// Fetch looks up suggestions for the prefix and delivers them unless a newer
// Fetch has been issued in the meantime. Lookup errors are swallowed: a
// failed autocomplete just delivers nothing.
func (s *Suggester) Fetch(ctx context.Context, field, prefix string, limit int, deliver func([]string)) {
	s.mu.Lock()
	s.seq++
	ticket := s.seq
	s.mu.Unlock()

	go func() {
		values, err := s.client.Suggest(ctx, field, prefix, limit)
		if err != nil {
			return
		}

		s.mu.Lock()
		stale := ticket != s.seq
		s.mu.Unlock()
		if stale {
			return
		}

		deliver(values)
	}()
}
