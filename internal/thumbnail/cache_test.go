package thumbnail

import (
	"path/filepath"
	"testing"
)

func TestSetGetBlobRoundTrip(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(dbPath, 1<<20)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	key := Key(1, 256)
	want := []byte("not really a thumbnail")

	if err := c.SetBlob(key, want); err != nil {
		t.Fatalf("SetBlob: %v", err)
	}

	got, ok, err := c.GetBlob(key)
	if err != nil {
		t.Fatalf("GetBlob: %v", err)
	}
	if !ok {
		t.Fatal("expected hit, got miss")
	}
	if string(got) != string(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestGetBlobMiss(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(dbPath, 1<<20)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	_, ok, err := c.GetBlob(Key(99, 64))
	if err != nil {
		t.Fatalf("GetBlob: %v", err)
	}
	if ok {
		t.Fatal("expected miss on empty cache")
	}
}

func TestSetBlobEvictsUnderBudget(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")
	c, err := Open(dbPath, 30)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer c.Close()

	blob := make([]byte, 20)

	if err := c.SetBlob(Key(1, 1), blob); err != nil {
		t.Fatalf("SetBlob 1: %v", err)
	}
	if err := c.SetBlob(Key(2, 1), blob); err != nil {
		t.Fatalf("SetBlob 2: %v", err)
	}

	if _, ok, _ := c.GetBlob(Key(1, 1)); ok {
		t.Error("expected oldest entry to be evicted once over budget")
	}
	if _, ok, _ := c.GetBlob(Key(2, 1)); !ok {
		t.Error("expected most recent entry to survive eviction")
	}
}

func TestDisabledCacheAlwaysMisses(t *testing.T) {
	c := Disabled()

	if err := c.SetBlob("k", []byte("v")); err != nil {
		t.Fatalf("SetBlob: %v", err)
	}
	if _, ok, _ := c.GetBlob("k"); ok {
		t.Fatal("disabled cache must never hit")
	}
}
