package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewMemoryStore()
	store.now = func() time.Time { return now }

	if _, ok, err := store.Get(ctx, "missing"); ok || err != nil {
		t.Fatalf("Get(missing) = %v, %v", ok, err)
	}

	if err := store.Set(ctx, "a", []byte("1"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Set(ctx, "b", []byte("2"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	value, ok, err := store.Get(ctx, "a")
	if err != nil || !ok || string(value) != "1" {
		t.Fatalf("Get(a) = %q, %v, %v", value, ok, err)
	}

	now = now.Add(time.Minute)
	if _, ok, _ := store.Get(ctx, "a"); ok {
		t.Error("Expected a to have expired")
	}
	if _, ok, _ := store.Get(ctx, "b"); !ok {
		t.Error("Entries without ttl must not expire")
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok, _ := store.Get(ctx, "b"); ok {
		t.Error("Expected Clear to remove every entry")
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	buf := []byte("abc")
	store.Set(ctx, "k", buf, 0)
	buf[0] = 'x'

	value, _, _ := store.Get(ctx, "k")
	if string(value) != "abc" {
		t.Errorf("Stored value changed with caller's buffer: %q", value)
	}
}
