package models

import (
	"encoding/json"
	"fmt"
	"path/filepath"
)

// MediaFile identifies a library file's location relative to the library root.
type MediaFile struct {
	ID        int64
	Directory string
	FileName  string
}

// RelPath returns the file's path relative to the library root.
func (f MediaFile) RelPath() string {
	return filepath.Join(f.Directory, f.FileName)
}

// AbsPath returns the file's absolute path under the given library root.
func (f MediaFile) AbsPath(root string) string {
	return filepath.Join(root, f.Directory, f.FileName)
}

// Recommendation pairs a library file id with its similarity distance.
// Lower distance means more similar. Ordering is defined by the retriever
// and must be preserved downstream.
type Recommendation struct {
	FileID   int64
	Distance float64
}

// MarshalJSON encodes the recommendation as a two-element array, [id, distance].
func (r Recommendation) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{r.FileID, r.Distance})
}

// UnmarshalJSON decodes the [id, distance] pair form.
func (r *Recommendation) UnmarshalJSON(data []byte) error {
	var pair [2]json.Number
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("recommendation must be an [id, distance] pair: %w", err)
	}

	id, err := pair[0].Int64()
	if err != nil {
		return fmt.Errorf("invalid recommendation id: %w", err)
	}
	distance, err := pair[1].Float64()
	if err != nil {
		return fmt.Errorf("invalid recommendation distance: %w", err)
	}

	r.FileID = id
	r.Distance = distance
	return nil
}
