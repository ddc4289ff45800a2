// Package session tracks drag gestures per editor client.
//
// The HTTP editor shares one canvas between all connected clients, but each
// client drags independently: a press in one browser tab must not end a drag
// started in another. A [Session] owns one [canvas.Tracker] bound to the
// shared canvas.
//
// # Usage
//
//	store := session.NewMemoryStore(c, session.DefaultTTL)
//
//	sess, _ := store.Create(ctx)
//	sess.Tracker.Press(pointer, canvas.DefaultHitRadius)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, errors.ErrCodeSessionNotFound) {
//	    // unknown or expired
//	}
//
// Sessions expire after a period without use. Get extends the expiry;
// Cleanup removes expired sessions. Callers must serialize tracker calls
// with every other access to the canvas.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/flowcanvas/pkg/canvas"
)

// DefaultTTL is how long an idle session survives.
const DefaultTTL = 30 * time.Minute

// Session is one client's gesture state.
type Session struct {
	ID        string
	Tracker   *canvas.Tracker
	CreatedAt time.Time
	ExpiresAt time.Time
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage.
type Store interface {
	// Create starts a new session with an idle tracker.
	Create(ctx context.Context) (*Session, error)

	// Get returns the session and extends its expiry. Unknown and expired
	// ids yield a SESSION_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}

// GenerateID returns a new random session id.
func GenerateID() string {
	return uuid.NewString()
}
