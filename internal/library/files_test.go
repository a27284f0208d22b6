package library_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sableglen/resonate/internal/library"
	"github.com/sableglen/resonate/internal/shared"
	tu "github.com/sableglen/resonate/internal/testing"
)

func seedFile(t *testing.T, store *library.Store, directory, fileName string) int64 {
	t.Helper()
	id, added, err := store.Upsert(directory, fileName, 128, time.Now(), time.Now())
	if err != nil {
		t.Fatalf("failed to seed %s/%s: %v", directory, fileName, err)
	}
	if !added {
		t.Fatalf("expected %s/%s to be new", directory, fileName)
	}
	return id
}

func TestFiles(t *testing.T) {
	t.Run("Upsert", func(t *testing.T) {
		store := tu.NewMemoryLibrary(t, t.TempDir())

		id := seedFile(t, store, "artist", "track.mp3")

		again, added, err := store.Upsert("artist", "track.mp3", 256, time.Now(), time.Now())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if added {
			t.Error("expected refresh, not insert")
		}
		if again != id {
			t.Errorf("id changed on refresh: %d != %d", again, id)
		}
	})

	t.Run("IDByPath", func(t *testing.T) {
		root := t.TempDir()
		store := tu.NewMemoryLibrary(t, root)
		id := seedFile(t, store, "artist", "track.mp3")

		t.Run("resolves a relative path", func(t *testing.T) {
			got, err := store.IDByPath(filepath.Join("artist", "track.mp3"))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != id {
				t.Errorf("expected id %d, got %d", id, got)
			}
		})

		t.Run("resolves an absolute path under the root", func(t *testing.T) {
			got, err := store.IDByPath(filepath.Join(root, "artist", "track.mp3"))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != id {
				t.Errorf("expected id %d, got %d", id, got)
			}
		})

		t.Run("unknown path wraps ErrNotFound", func(t *testing.T) {
			_, err := store.IDByPath("artist/missing.mp3")
			if !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})

		t.Run("absolute path outside the root wraps ErrNotFound", func(t *testing.T) {
			_, err := store.IDByPath(filepath.Join(t.TempDir(), "track.mp3"))
			if !errors.Is(err, shared.ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
		})
	})

	t.Run("FilesByIDs", func(t *testing.T) {
		store := tu.NewMemoryLibrary(t, t.TempDir())
		a := seedFile(t, store, "artist", "a.mp3")
		b := seedFile(t, store, "artist", "b.mp3")
		seedFile(t, store, "artist", "c.mp3")

		t.Run("returns only matching records", func(t *testing.T) {
			files, err := store.FilesByIDs([]int64{a, b, 9999})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(files) != 2 {
				t.Fatalf("expected 2 records, got %d", len(files))
			}
			if files[a].FileName != "a.mp3" || files[b].FileName != "b.mp3" {
				t.Errorf("unexpected records: %+v", files)
			}
			if _, ok := files[9999]; ok {
				t.Error("unknown id should be absent, not an error")
			}
		})

		t.Run("empty input yields empty map", func(t *testing.T) {
			files, err := store.FilesByIDs(nil)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(files) != 0 {
				t.Errorf("expected empty map, got %d entries", len(files))
			}
		})
	})

	t.Run("PruneBefore removes stale records", func(t *testing.T) {
		store := tu.NewMemoryLibrary(t, t.TempDir())

		old := time.Now().Add(-time.Hour)
		if _, _, err := store.Upsert("artist", "stale.mp3", 1, old, old); err != nil {
			t.Fatalf("failed to seed: %v", err)
		}
		fresh := seedFile(t, store, "artist", "fresh.mp3")

		removed, err := store.PruneBefore(time.Now().Add(-time.Minute))
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if removed != 1 {
			t.Errorf("expected 1 removed, got %d", removed)
		}

		files, err := store.FilesByIDs([]int64{fresh})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(files) != 1 {
			t.Error("fresh record should survive pruning")
		}
	})

	t.Run("feature vectors", func(t *testing.T) {
		store := tu.NewMemoryLibrary(t, t.TempDir())
		a := seedFile(t, store, "artist", "a.mp3")
		b := seedFile(t, store, "artist", "b.mp3")

		pending, err := store.FilesWithoutFeatures()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(pending) != 2 {
			t.Fatalf("expected 2 unanalyzed files, got %d", len(pending))
		}

		if err := store.SaveFeatureVector(a, []float64{0.25, 0.75}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		pending, err = store.FilesWithoutFeatures()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(pending) != 1 || pending[0].ID != b {
			t.Errorf("expected only %d to remain unanalyzed, got %+v", b, pending)
		}

		vectors, err := store.FeatureVectors()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(vectors) != 1 || vectors[a][0] != 0.25 || vectors[a][1] != 0.75 {
			t.Errorf("unexpected vectors: %+v", vectors)
		}
	})
}
