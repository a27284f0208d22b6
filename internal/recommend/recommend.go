// Package recommend implements the nearest-neighbor recommendation backend.
//
// Fingerprint vectors are synced from the library database into a dedicated
// index database (by default <root>/.resonate/recommend.db), and queries
// rank every indexed file by euclidean distance to the target. Retrieval is
// read-only and returns entries ordered ascending by distance, most similar
// first.
package recommend

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/sableglen/resonate/internal/analysis"
	"github.com/sableglen/resonate/internal/models"
	"github.com/sableglen/resonate/internal/shared"
)

// Store provides access to a library's recommendation index.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the recommendation index for the
// library rooted at root.
func Open(root string, cfg *shared.Config) (*Store, error) {
	path := filepath.Join(root, cfg.Library.DataDir, cfg.Library.IndexFile)
	db, err := shared.NewDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
	}
	shared.ConfigureDatabase(db, cfg.Library.MaxOpenConns, cfg.Library.MaxIdleConns)

	return OpenDB(db)
}

// OpenDB wraps an existing database connection, creating the index schema if
// absent. Used by tests with in-memory databases.
func OpenDB(db *sql.DB) (*Store, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS vectors (
			file_id INTEGER PRIMARY KEY,
			vector TEXT NOT NULL,
			synced_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database connection.
func (s *Store) Close() error { return s.db.Close() }

// Sync replaces the index contents with the given vectors in one
// transaction.
func (s *Store) Sync(vectors map[int64][]float64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin sync: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM vectors"); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	now := time.Now()
	for fileID, vector := range vectors {
		encoded, err := json.Marshal(vector)
		if err != nil {
			return fmt.Errorf("failed to encode vector for file %d: %w", fileID, err)
		}
		if _, err := tx.Exec(
			"INSERT INTO vectors (file_id, vector, synced_at) VALUES (?, ?, ?)",
			fileID, string(encoded), now,
		); err != nil {
			return fmt.Errorf("failed to index file %d: %w", fileID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sync: %w", err)
	}
	return nil
}

// NearestNeighbors returns at most count recommendations for fileID, ordered
// ascending by distance with the query file itself excluded. The index may
// hold fewer neighbors than requested; a negative count is treated as zero.
//
// Returns an error wrapping [shared.ErrRetrieval] when fileID is not indexed
// or the index cannot be read.
func (s *Store) NearestNeighbors(ctx context.Context, fileID int64, count int) ([]models.Recommendation, error) {
	vectors, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRetrieval, err)
	}

	target, ok := vectors[fileID]
	if !ok {
		return nil, fmt.Errorf("%w: item %d is not in the recommendation index (run `resonate analyze`?)", shared.ErrRetrieval, fileID)
	}

	recommendations := make([]models.Recommendation, 0, len(vectors)-1)
	for id, vector := range vectors {
		if id == fileID {
			continue
		}
		recommendations = append(recommendations, models.Recommendation{
			FileID:   id,
			Distance: analysis.Distance(target, vector),
		})
	}

	sort.Slice(recommendations, func(i, j int) bool {
		if recommendations[i].Distance != recommendations[j].Distance {
			return recommendations[i].Distance < recommendations[j].Distance
		}
		return recommendations[i].FileID < recommendations[j].FileID
	})

	if count < 0 {
		count = 0
	}
	if len(recommendations) > count {
		recommendations = recommendations[:count]
	}

	return recommendations, nil
}

func (s *Store) load(ctx context.Context) (map[int64][]float64, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT file_id, vector FROM vectors")
	if err != nil {
		return nil, fmt.Errorf("failed to query index: %w", err)
	}
	defer rows.Close()

	vectors := make(map[int64][]float64)
	for rows.Next() {
		var fileID int64
		var encoded string
		if err := rows.Scan(&fileID, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan vector: %w", err)
		}
		var vector []float64
		if err := json.Unmarshal([]byte(encoded), &vector); err != nil {
			return nil, fmt.Errorf("failed to decode vector for file %d: %w", fileID, err)
		}
		vectors[fileID] = vector
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return vectors, nil
}
