package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/narayan-iyengar/scope/pkg/viewport"
)

func TestNewSession(t *testing.T) {
	s := New("anon", 0)
	if s.ID == "" {
		t.Error("session must get a random id")
	}
	if s.Viewport != viewport.DefaultState() {
		t.Errorf("viewport = %+v, want default", s.Viewport)
	}
	if got := s.ExpiresAt.Sub(s.CreatedAt); got != DefaultTTL {
		t.Errorf("ttl = %v, want default %v", got, DefaultTTL)
	}
	if s.IsExpired() {
		t.Error("fresh session must not be expired")
	}
}

func TestTouchExtendsExpiry(t *testing.T) {
	s := New("anon", time.Minute)
	before := s.ExpiresAt
	time.Sleep(time.Millisecond)
	s.Touch(time.Hour)
	if !s.ExpiresAt.After(before) {
		t.Error("touch must push the expiry out")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	defer store.Close(ctx)

	sess := New("user-1", time.Hour)
	sess.TopologyID = "containers"
	sess.Viewport = viewport.State{Scale: 0.6, PanX: 10, PanY: 20, HasZoomed: true}
	sess.ZoomCache = map[string]viewport.State{
		"hosts": {Scale: 1.2, HasZoomed: true},
	}
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Viewport != sess.Viewport {
		t.Errorf("viewport = %+v, want %+v", got.Viewport, sess.Viewport)
	}
	if got.ZoomCache["hosts"].Scale != 1.2 {
		t.Errorf("zoom cache not persisted: %+v", got.ZoomCache)
	}
	if got.TopologyID != "containers" {
		t.Errorf("topology = %q", got.TopologyID)
	}
}

func TestMemoryStoreNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess := New("user-1", time.Hour)
	sess.ExpiresAt = time.Now().Add(-time.Second)
	if err := store.Set(ctx, sess); err != nil {
		t.Fatalf("set: %v", err)
	}

	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrExpired) {
		t.Errorf("err = %v, want ErrExpired", err)
	}
}

func TestMemoryStoreCleanup(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	live := New("user-1", time.Hour)
	dead := New("user-2", time.Hour)
	dead.ExpiresAt = time.Now().Add(-time.Second)
	store.Set(ctx, live)
	store.Set(ctx, dead)

	if err := store.Cleanup(ctx); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := store.Get(ctx, live.ID); err != nil {
		t.Errorf("live session removed: %v", err)
	}
	if _, err := store.Get(ctx, dead.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired session not removed: %v", err)
	}
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess := New("user-1", time.Hour)
	store.Set(ctx, sess)
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, sess.ID); err != nil {
		t.Error("deleting a missing session must not error")
	}
}

func TestStoredSessionIsCopied(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	sess := New("user-1", time.Hour)
	store.Set(ctx, sess)
	sess.TopologyID = "mutated-after-set"

	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TopologyID == "mutated-after-set" {
		t.Error("store must hold a copy, not share the caller's struct")
	}
}
