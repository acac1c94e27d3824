package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	file, err := NewFile(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	db, err := NewSQLite(filepath.Join(t.TempDir(), "hark.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return map[string]Storage{
		"file":   file,
		"sqlite": db,
		"memory": NewMemory(),
	}
}

func TestStorageRoundtrip(t *testing.T) {
	ctx := context.Background()

	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			// Get returns ErrNotFound for unknown key
			if _, err := st.Get(ctx, "documents"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}

			if err := st.Set(ctx, "documents", []byte(`[1]`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, err := st.Get(ctx, "documents")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if string(got) != `[1]` {
				t.Errorf("Get = %s, want [1]", got)
			}

			// Set overwrites
			if err := st.Set(ctx, "documents", []byte(`[1,2]`)); err != nil {
				t.Fatalf("Set failed: %v", err)
			}
			got, _ = st.Get(ctx, "documents")
			if string(got) != `[1,2]` {
				t.Errorf("Get = %s, want [1,2]", got)
			}

			if err := st.Set(ctx, "", []byte("x")); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("expected ErrInvalidKey, got %v", err)
			}
		})
	}
}

func TestFilePersistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	st1, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	st1.Set(ctx, "documents", []byte(`{"a":1}`))

	// New instance should read persisted data
	st2, err := NewFile(dir)
	if err != nil {
		t.Fatalf("NewFile failed: %v", err)
	}
	got, err := st2.Get(ctx, "documents")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"a":1}` {
		t.Errorf("Get = %s", got)
	}

	// No temp files left behind
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "documents.json" {
		t.Errorf("unexpected files in state dir: %v", entries)
	}
}

func TestFileRejectsPathKeys(t *testing.T) {
	st, _ := NewFile(t.TempDir())
	for _, key := range []string{"../escape", "a/b", "..", ""} {
		if err := st.Set(context.Background(), key, []byte("x")); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("Set(%q): expected ErrInvalidKey, got %v", key, err)
		}
	}
}

func TestSQLitePersistence(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "hark.db")
	ctx := context.Background()

	db1, err := NewSQLite(dsn)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	db1.Set(ctx, "documents", []byte(`[]`))
	db1.Close()

	db2, err := NewSQLite(dsn)
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	defer db2.Close()

	got, err := db2.Get(ctx, "documents")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `[]` {
		t.Errorf("Get = %s, want []", got)
	}
}

func TestOpen(t *testing.T) {
	if _, err := Open("bogus", t.TempDir(), ""); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("expected ErrUnknownBackend, got %v", err)
	}

	st, err := Open(BackendMemory, "", "")
	if err != nil {
		t.Fatalf("Open(memory) failed: %v", err)
	}
	if _, ok := st.(*Memory); !ok {
		t.Errorf("Open(memory) returned %T", st)
	}

	st, err = Open(BackendFile, t.TempDir(), "")
	if err != nil {
		t.Fatalf("Open(file) failed: %v", err)
	}
	if _, ok := st.(*File); !ok {
		t.Errorf("Open(file) returned %T", st)
	}
}
