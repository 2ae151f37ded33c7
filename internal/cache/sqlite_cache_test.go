package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mobil-koeln/station-cli/internal/storage"
)

func openDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := storage.Open(context.Background(), storage.MemoryPath)
	if err != nil {
		t.Fatalf("storage.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newCache returns a cache with a controllable clock
func newCache(t *testing.T, ttl time.Duration) (*SQLiteCache, *time.Time) {
	t.Helper()
	c := NewSQLiteCache(openDB(t), ttl, nil)
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestSQLiteCache_SetAndGet(t *testing.T) {
	c, _ := newCache(t, 60*time.Second)

	key := "https://example.com/api/test"
	value := []byte(`{"test": "data"}`)

	if err := c.Set(key, value); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := c.Get(key)
	if !ok {
		t.Fatal("Get() returned false, want true")
	}
	if string(got) != string(value) {
		t.Errorf("Get() = %q, want %q", got, value)
	}
}

func TestSQLiteCache_GetMissing(t *testing.T) {
	c, _ := newCache(t, 60*time.Second)

	if _, ok := c.Get("non-existent-key"); ok {
		t.Error("Get() returned true for non-existent key")
	}
}

func TestSQLiteCache_Overwrite(t *testing.T) {
	c, _ := newCache(t, 60*time.Second)

	if err := c.Set("k", []byte("one")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Set("k", []byte("two")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, ok := c.Get("k")
	if !ok || string(got) != "two" {
		t.Errorf("Get() = %q, %v, want two, true", got, ok)
	}
}

func TestSQLiteCache_Expiration(t *testing.T) {
	c, now := newCache(t, 100*time.Millisecond)

	key := "https://example.com/api/expire-test"
	if err := c.Set(key, []byte("x")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, ok := c.Get(key); !ok {
		t.Error("Get() returned false immediately after Set()")
	}

	*now = now.Add(150 * time.Millisecond)

	if _, ok := c.Get(key); ok {
		t.Error("Get() returned true for expired key")
	}

	var n int
	if err := c.db.Get(&n, "SELECT COUNT(*) FROM response_cache"); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expired row not removed, %d rows left", n)
	}
}

func TestSQLiteCache_Clear(t *testing.T) {
	c, _ := newCache(t, 60*time.Second)

	keys := []string{"a", "b", "c"}
	for _, key := range keys {
		if err := c.Set(key, []byte("data")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	for _, key := range keys {
		if _, ok := c.Get(key); ok {
			t.Errorf("Get(%q) returned true after Clear()", key)
		}
	}
}

func TestSQLiteCache_ClearEmptyCache(t *testing.T) {
	c, _ := newCache(t, 60*time.Second)
	if err := c.Clear(); err != nil {
		t.Errorf("Clear() on empty cache error = %v", err)
	}
}

func TestSQLiteCache_Cleanup(t *testing.T) {
	c, now := newCache(t, 100*time.Millisecond)

	for _, key := range []string{"old1", "old2"} {
		if err := c.Set(key, []byte("old data")); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	*now = now.Add(150 * time.Millisecond)

	if err := c.Set("fresh", []byte("fresh data")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	removed, err := c.Cleanup()
	if err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if removed != 2 {
		t.Errorf("Cleanup() removed %d, want 2", removed)
	}

	if _, ok := c.Get("fresh"); !ok {
		t.Error("Get(fresh) returned false after Cleanup(), fresh entry was removed")
	}
}
