package library

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sableglen/resonate/internal/models"
	"github.com/sableglen/resonate/internal/shared"
)

// IDByPath resolves a file path to its library id. The path may be absolute
// or relative to the library root.
//
// Returns [shared.ErrNotFound] when no record matches.
func (s *Store) IDByPath(path string) (int64, error) {
	rel := path
	if filepath.IsAbs(path) {
		var err error
		rel, err = filepath.Rel(s.root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return 0, fmt.Errorf("%w: %s is outside the library root", shared.ErrNotFound, path)
		}
	}
	rel = filepath.Clean(rel)

	directory := filepath.Dir(rel)
	fileName := filepath.Base(rel)

	var id int64
	err := s.db.QueryRow(
		"SELECT id FROM files WHERE directory = ? AND file_name = ?",
		directory, fileName,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("%w: %s", shared.ErrNotFound, path)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to resolve path: %w", err)
	}

	return id, nil
}

// FilesByIDs resolves file records for the given ids in a single batched
// query. Ids with no matching record are absent from the returned map; that
// is not an error condition.
func (s *Store) FilesByIDs(ids []int64) (map[int64]models.MediaFile, error) {
	files := make(map[int64]models.MediaFile, len(ids))
	if len(ids) == 0 {
		return files, nil
	}

	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.Query(
		fmt.Sprintf("SELECT id, directory, file_name FROM files WHERE id IN (%s)", placeholders),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.MediaFile
		if err := rows.Scan(&f.ID, &f.Directory, &f.FileName); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files[f.ID] = f
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return files, nil
}

// Upsert records a scanned file, inserting a new row or refreshing an
// existing one. Returns the file id and whether a new row was created.
func (s *Store) Upsert(directory, fileName string, size int64, modified, scanned time.Time) (int64, bool, error) {
	var id int64
	err := s.db.QueryRow(
		"SELECT id FROM files WHERE directory = ? AND file_name = ?",
		directory, fileName,
	).Scan(&id)

	switch {
	case err == sql.ErrNoRows:
		res, err := s.db.Exec(
			"INSERT INTO files (directory, file_name, size, modified_at, scanned_at) VALUES (?, ?, ?, ?, ?)",
			directory, fileName, size, modified, scanned,
		)
		if err != nil {
			return 0, false, fmt.Errorf("failed to insert file: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return 0, false, fmt.Errorf("failed to get inserted id: %w", err)
		}
		return id, true, nil
	case err != nil:
		return 0, false, fmt.Errorf("failed to look up file: %w", err)
	}

	_, err = s.db.Exec(
		"UPDATE files SET size = ?, modified_at = ?, scanned_at = ? WHERE id = ?",
		size, modified, scanned, id,
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to update file: %w", err)
	}
	return id, false, nil
}

// PruneBefore deletes records not refreshed since cutoff, i.e. files that
// vanished from disk between scans. Returns the number of removed rows.
func (s *Store) PruneBefore(cutoff time.Time) (int, error) {
	res, err := s.db.Exec("DELETE FROM files WHERE scanned_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune files: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(removed), nil
}

// FilesWithoutFeatures lists files that have no fingerprint vector yet, or
// whose file changed after it was analyzed.
func (s *Store) FilesWithoutFeatures() ([]models.MediaFile, error) {
	rows, err := s.db.Query(`
		SELECT f.id, f.directory, f.file_name
		FROM files f
		LEFT JOIN features ft ON ft.file_id = f.id
		WHERE ft.file_id IS NULL OR f.modified_at > ft.analyzed_at
		ORDER BY f.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query unanalyzed files: %w", err)
	}
	defer rows.Close()

	var files []models.MediaFile
	for rows.Next() {
		var f models.MediaFile
		if err := rows.Scan(&f.ID, &f.Directory, &f.FileName); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return files, nil
}

// SaveFeatureVector stores (or replaces) the fingerprint vector for a file.
func (s *Store) SaveFeatureVector(fileID int64, vector []float64) error {
	encoded, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT INTO features (file_id, vector, analyzed_at) VALUES (?, ?, ?) "+
			"ON CONFLICT (file_id) DO UPDATE SET vector = excluded.vector, analyzed_at = excluded.analyzed_at",
		fileID, string(encoded), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save vector: %w", err)
	}
	return nil
}

// FeatureVectors loads every stored fingerprint vector keyed by file id.
func (s *Store) FeatureVectors() (map[int64][]float64, error) {
	rows, err := s.db.Query("SELECT file_id, vector FROM features")
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
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
