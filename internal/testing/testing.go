// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/sableglen/resonate/internal/library"
	"github.com/sableglen/resonate/internal/models"
	"github.com/sableglen/resonate/internal/shared"
)

// MockRecommender is a configurable test double for the recommendation
// backend. Calls counts retrievals so tests can assert a collaborator was
// never reached.
type MockRecommender struct {
	Recommendations []models.Recommendation
	Err             error
	Calls           int
}

func (m *MockRecommender) NearestNeighbors(ctx context.Context, fileID int64, count int) ([]models.Recommendation, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	recs := m.Recommendations
	if count < 0 {
		count = 0
	}
	if len(recs) > count {
		recs = recs[:count]
	}
	return recs, nil
}

// MockFileStore backs the pipeline's metadata lookups with in-memory maps.
type MockFileStore struct {
	IDs   map[string]int64
	Files map[int64]models.MediaFile
	Calls int
}

func (m *MockFileStore) IDByPath(path string) (int64, error) {
	m.Calls++
	if id, ok := m.IDs[path]; ok {
		return id, nil
	}
	return 0, fmt.Errorf("%w: %s", shared.ErrNotFound, path)
}

func (m *MockFileStore) FilesByIDs(ids []int64) (map[int64]models.MediaFile, error) {
	m.Calls++
	files := make(map[int64]models.MediaFile, len(ids))
	for _, id := range ids {
		if f, ok := m.Files[id]; ok {
			files[id] = f
		}
	}
	return files, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// NewMemoryLibrary opens a migrated in-memory library store rooted at root.
func NewMemoryLibrary(t *testing.T, root string) *library.Store {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}
	// Every pooled connection to :memory: gets a distinct database; pin to one.
	shared.ConfigureDatabase(db, 1, 1)
	store, err := library.OpenDB(db, root)
	if err != nil {
		t.Fatalf("Failed to migrate in-memory database: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertNoFile(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("File should not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

func MustWriteFile(t *testing.T, path string, content []byte) {
	t.Helper()
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
