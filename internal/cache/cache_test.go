package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type image struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCache_SetGetRoundTrip(t *testing.T) {
	c := New(t.TempDir())
	want := []image{{ID: "i1", Name: "node"}, {ID: "i2", Name: "python"}}
	if err := c.Set("images", want); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	var got []image
	hit, err := c.Get("images", time.Hour, &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !hit {
		t.Fatal("Get() missed, want hit")
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestCache_ExpiredEntry(t *testing.T) {
	c := New(t.TempDir())
	c.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	if err := c.Set("images", []string{"node"}); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	c.now = time.Now

	var got []string
	hit, err := c.Get("images", time.Hour, &got)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if hit {
		t.Fatal("Get() hit an expired entry")
	}
	if _, err := os.Stat(c.pathForKey("images")); !os.IsNotExist(err) {
		t.Errorf("expired entry still on disk: %v", err)
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	c := New(t.TempDir())
	if err := os.WriteFile(c.pathForKey("addons"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	var got []string
	hit, err := c.Get("addons", time.Hour, &got)
	if err != nil || hit {
		t.Fatalf("Get() = (%v, %v), want miss without error", hit, err)
	}
}

func TestCache_Disabled(t *testing.T) {
	var c *Cache
	if err := c.Set("k", 1); err != nil {
		t.Errorf("nil Set() error = %v", err)
	}
	var v int
	if hit, _ := c.Get("k", time.Hour, &v); hit {
		t.Error("nil Get() hit")
	}
	if err := New("").Clear(); err != nil {
		t.Errorf("empty-dir Clear() error = %v", err)
	}
}

func TestCache_InvalidateAndClear(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	for _, k := range []string{"a", "b"} {
		if err := c.Set(k, k); err != nil {
			t.Fatal(err)
		}
	}
	if err := c.Invalidate("a"); err != nil {
		t.Fatalf("Invalidate() error = %v", err)
	}
	if err := c.Invalidate("missing"); err != nil {
		t.Fatalf("Invalidate(missing) error = %v", err)
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	left, _ := filepath.Glob(filepath.Join(dir, "*.json"))
	if len(left) != 0 {
		t.Errorf("entries left after Clear: %v", left)
	}
}

func TestFetch_LoadsOnceThenHits(t *testing.T) {
	c := New(t.TempDir())
	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"mongo"}, nil
	}

	for range 2 {
		got, err := Fetch(context.Background(), c, "addons", time.Hour, load)
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if diff := cmp.Diff([]string{"mongo"}, got); diff != "" {
			t.Errorf("Fetch() mismatch (-want +got):\n%s", diff)
		}
	}
	if loads != 1 {
		t.Errorf("load called %d times, want 1", loads)
	}
}

func TestFetch_ErrorNotCached(t *testing.T) {
	c := New(t.TempDir())
	boom := errors.New("boom")
	_, err := Fetch(context.Background(), c, "images", time.Hour, func(context.Context) ([]string, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Fetch() error = %v, want boom", err)
	}
	if _, err := os.Stat(c.pathForKey("images")); !os.IsNotExist(err) {
		t.Error("failed load was cached")
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := map[string]string{
		"":               "cache",
		"images":         "images",
		"addons:us-east": "addons_us-east",
		"../escape":      "___escape",
	}
	for in, want := range tests {
		if got := sanitizeKey(in); got != want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}
