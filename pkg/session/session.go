// Package session persists a viewer's viewport state across processes: the
// active pan/scale transform and the per-topology zoom cache, so a user who
// returns to a previously viewed topology gets their view back.
//
// Backends:
//   - memory: for development, testing, and the single-binary case
//   - mongo: for server deployments with more than one instance
//
// # Usage
//
//	store := session.NewMemoryStore()
//	sess := session.New("anon", session.DefaultTTL)
//	sess.Viewport = engine.Viewport().State()
//	sess.ZoomCache = engine.Viewport().Cache()
//	store.Set(ctx, sess)
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/narayan-iyengar/scope/pkg/viewport"
)

// DefaultTTL is how long a view session stays valid without updates.
const DefaultTTL = 30 * 24 * time.Hour

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Session stores one viewer's viewport state.
type Session struct {
	ID     string `json:"id" bson:"_id"`
	UserID string `json:"userId" bson:"userId"`

	// Viewport is the active transform; ZoomCache holds the per-topology
	// saved states keyed by topology id.
	Viewport  viewport.State            `json:"viewport" bson:"viewport"`
	ZoomCache map[string]viewport.State `json:"zoomCache,omitempty" bson:"zoomCache,omitempty"`

	// TopologyID is the topology active when the session was last saved.
	TopologyID string `json:"topologyId,omitempty" bson:"topologyId,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	ExpiresAt time.Time `json:"expiresAt" bson:"expiresAt"`
}

// New creates a session with a random id.
func New(userID string, ttl time.Duration) *Session {
	now := time.Now()
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Viewport:  viewport.DefaultState(),
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Touch advances UpdatedAt and pushes the expiry out by ttl.
func (s *Session) Touch(ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s.UpdatedAt = time.Now()
	s.ExpiresAt = s.UpdatedAt.Add(ttl)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session doesn't exist and ErrExpired if it
	// exists but has exceeded its TTL.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session, replacing any previous state under the same id.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for backends with
	// native expiry).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
