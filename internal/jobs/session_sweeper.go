package jobs

import (
	"context"
	"log"
	"time"
)

// SessionPruner deletes sessions idle since the cutoff.
type SessionPruner interface {
	PruneIdle(cutoff time.Time) (int, error)
}

// SessionSweeper expires idle chat sessions. Sessions only exist to give
// the model recent conversational context, so anything idle past the TTL
// is garbage.
type SessionSweeper struct {
	store SessionPruner
	ttl   time.Duration
}

// NewSessionSweeper creates a new SessionSweeper instance
func NewSessionSweeper(store SessionPruner, ttl time.Duration) *SessionSweeper {
	return &SessionSweeper{store: store, ttl: ttl}
}

// Process implements the Processor interface
func (s *SessionSweeper) Process(ctx context.Context) error {
	pruned, err := s.store.PruneIdle(time.Now().Add(-s.ttl))
	if err != nil {
		return err
	}
	if pruned > 0 {
		log.Printf("session sweeper: pruned %d idle sessions", pruned)
	}
	return nil
}
