package session

import (
	"context"
	"sync"
	"time"

	"github.com/tidwall/btree"

	"github.com/matzehuels/flowcanvas/pkg/canvas"
	"github.com/matzehuels/flowcanvas/pkg/errors"
)

// MemoryStore keeps sessions in process memory.
//
// Sessions are indexed twice: by id for lookups and in a btree ordered by
// deadline, so Cleanup only visits the sessions it removes.
type MemoryStore struct {
	mu       sync.Mutex
	canvas   *canvas.Canvas
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
	byExpiry *btree.BTreeG[*Session]
}

func expiresBefore(a, b *Session) bool {
	if !a.ExpiresAt.Equal(b.ExpiresAt) {
		return a.ExpiresAt.Before(b.ExpiresAt)
	}
	return a.ID < b.ID
}

// NewMemoryStore creates a store whose sessions drag on c.
// A non-positive ttl uses DefaultTTL.
func NewMemoryStore(c *canvas.Canvas, ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		canvas:   c,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
		// mu already serializes access.
		byExpiry: btree.NewBTreeGOptions(expiresBefore, btree.Options{NoLocks: true}),
	}
}

func (s *MemoryStore) Create(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:        GenerateID(),
		Tracker:   canvas.NewTracker(s.canvas),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.sessions[sess.ID] = sess
	s.byExpiry.Set(sess)
	return sess, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q not found", id)
	}
	now := s.now()
	if now.After(sess.ExpiresAt) {
		s.remove(sess)
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %q expired", id)
	}

	// The deadline is part of the btree key, so re-insert around the update.
	s.byExpiry.Delete(sess)
	sess.ExpiresAt = now.Add(s.ttl)
	s.byExpiry.Set(sess)
	return sess, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		s.remove(sess)
	}
	return nil
}

func (s *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for {
		sess, ok := s.byExpiry.Min()
		if !ok || !now.After(sess.ExpiresAt) {
			return n, nil
		}
		s.remove(sess)
		n++
	}
}

func (s *MemoryStore) remove(sess *Session) {
	s.byExpiry.Delete(sess)
	delete(s.sessions, sess.ID)
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

var _ Store = (*MemoryStore)(nil)
