package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestDefaultPathOverride(t *testing.T) {
	t.Cleanup(ResetPath)

	path := filepath.Join(t.TempDir(), "xervo.db")
	SetPath(path)

	got, err := DefaultPath()
	if err != nil {
		t.Fatalf("DefaultPath error: %v", err)
	}
	if got != path {
		t.Fatalf("DefaultPath = %q, want %q", got, path)
	}
}

func TestOpenRunsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "xervo.db")

	db, err := Open(context.Background(), path,
		`CREATE TABLE IF NOT EXISTS things (id INTEGER PRIMARY KEY)`,
		`CREATE INDEX IF NOT EXISTS idx_things ON things(id)`,
	)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.Exec(`INSERT INTO things (id) VALUES (1)`); err != nil {
		t.Fatalf("insert after migration: %v", err)
	}
}

func TestOpenFailedMigration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xervo.db")
	if _, err := Open(context.Background(), path, `NOT VALID SQL`); err == nil {
		t.Fatal("expected migration error")
	}
}
