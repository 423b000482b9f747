// Package session persists per-conversation state: chat history and the
// sticky corpus hint.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/poliq-ai/poliq/internal/domain"
)

var bucketSessions = []byte("sessions")

// Store is a bbolt-backed session store. Sessions are created on first
// touch and pruned by the background sweeper once idle past the TTL.
type Store struct {
	db  *bbolt.DB
	now func() time.Time
}

// Open opens (creating if needed) the session database at path.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSessions)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create sessions bucket: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the session with the given ID, or an empty session if none
// exists yet. First touch does not persist anything.
func (s *Store) Get(sessionID string) (*domain.Session, error) {
	sess := &domain.Session{ID: sessionID, History: []domain.Message{}}
	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(bucketSessions).Get([]byte(sessionID))
		if raw == nil {
			return nil
		}
		return json.Unmarshal(raw, sess)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return sess, nil
}

// AppendMessage adds one turn to the session history.
func (s *Store) AppendMessage(sessionID, role, content string) error {
	msg := domain.Message{Role: role, Content: content}
	if err := domain.ValidateMessage(&msg); err != nil {
		return err
	}
	return s.update(sessionID, func(sess *domain.Session) {
		sess.History = append(sess.History, msg)
	})
}

// SetCorpusHint stores the sticky corpus hint for the session so
// follow-up questions keep routing to the same institution.
func (s *Store) SetCorpusHint(sessionID, hint string) error {
	return s.update(sessionID, func(sess *domain.Session) {
		sess.CorpusHint = hint
	})
}

// PruneIdle deletes sessions whose last activity predates cutoff and
// returns how many were removed.
func (s *Store) PruneIdle(cutoff time.Time) (int, error) {
	pruned := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessions)
		c := b.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var sess domain.Session
			if err := json.Unmarshal(v, &sess); err != nil {
				// An unreadable session is dead weight either way.
				if err := c.Delete(); err != nil {
					return err
				}
				pruned++
				continue
			}
			if sess.UpdatedAt.Before(cutoff) {
				if err := c.Delete(); err != nil {
					return err
				}
				pruned++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return pruned, nil
}

func (s *Store) update(sessionID string, mutate func(*domain.Session)) error {
	if sessionID == "" {
		return domain.ErrMissingSessionID
	}
	err := s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketSessions)

		sess := domain.Session{ID: sessionID, History: []domain.Message{}}
		if raw := b.Get([]byte(sessionID)); raw != nil {
			if err := json.Unmarshal(raw, &sess); err != nil {
				return err
			}
		}

		mutate(&sess)
		sess.UpdatedAt = s.now().UTC()

		data, err := json.Marshal(&sess)
		if err != nil {
			return err
		}
		return b.Put([]byte(sessionID), data)
	})
	if err != nil {
		return fmt.Errorf("failed to update session %s: %w", sessionID, err)
	}
	return nil
}
