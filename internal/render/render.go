// Package render produces the three output forms of the recommendation
// pipeline: an interactive table, a JSON document, and an M3U8 playlist.
//
// File-producing renderers normalize the output path's extension, create
// missing parent directories, and write through a temporary file renamed
// into place on success so a failed write never leaves a truncated
// artifact. Entries without a joined file record are dropped from table and
// playlist output; JSON serializes the raw retrieval entries, so they
// survive there.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sableglen/resonate/internal/models"
	"github.com/sableglen/resonate/internal/shared"
)

// Supported file formats. An empty format selects the table.
const (
	FormatJSON = "json"
	FormatM3U8 = "m3u8"
)

// Entry pairs a recommendation with its joined file record. File is nil when
// the id had no match in the metadata store.
type Entry struct {
	Recommendation models.Recommendation
	File           *models.MediaFile
}

// Join pairs recommendations with their file records, preserving retrieval
// order exactly.
func Join(recommendations []models.Recommendation, files map[int64]models.MediaFile) []Entry {
	entries := make([]Entry, 0, len(recommendations))
	for _, rec := range recommendations {
		entry := Entry{Recommendation: rec}
		if file, ok := files[rec.FileID]; ok {
			entry.File = &file
		}
		entries = append(entries, entry)
	}
	return entries
}

// Dropped counts entries lacking a joined file record.
func Dropped(entries []Entry) int {
	n := 0
	for _, e := range entries {
		if e.File == nil {
			n++
		}
	}
	return n
}

var tableBorderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

// Table writes one row per joined entry: the zero-padded id, the distance to
// four decimal places, and the file's absolute path under root. Entries
// without a file record are skipped.
func Table(w io.Writer, entries []Entry, root string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers("ID", "Distance", "File Path")

	for _, e := range entries {
		if e.File == nil {
			continue
		}
		t.Row(
			fmt.Sprintf("%05d", e.Recommendation.FileID),
			fmt.Sprintf("%.4f", e.Recommendation.Distance),
			e.File.AbsPath(root),
		)
	}

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return fmt.Errorf("failed to write table: %w", err)
	}
	return nil
}

// WriteResult reports where a file renderer wrote its artifact and whether
// the output path's extension had to be corrected.
type WriteResult struct {
	Path      string
	Corrected bool
}

// WriteJSON serializes the raw recommendation entries, in retrieval order, as
// a compact JSON array of [id, distance] pairs to output (extension
// normalized to .json).
func WriteJSON(recommendations []models.Recommendation, output string) (*WriteResult, error) {
	path := shared.EnsureExtension(output, FormatJSON)

	data, err := json.Marshal(recommendations)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	if err := writeFileAtomic(path, data); err != nil {
		return nil, err
	}

	return &WriteResult{Path: path, Corrected: path != output}, nil
}

// WriteM3U8 writes an M3U8 playlist to output (extension normalized to
// .m3u8): the #EXTM3U header, then one line per joined entry in retrieval
// order, each path expressed relative to the playlist's own directory.
// Entries without a file record are silently skipped.
func WriteM3U8(entries []Entry, root, output string) (*WriteResult, error) {
	path := shared.EnsureExtension(output, FormatM3U8)

	playlistDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNoRelativePath, err)
	}

	var buf bytes.Buffer
	buf.WriteString("#EXTM3U\n")

	for _, e := range entries {
		if e.File == nil {
			continue
		}
		rel, err := shared.RelativeTo(e.File.AbsPath(root), playlistDir)
		if err != nil {
			return nil, err
		}
		buf.WriteString(rel)
		buf.WriteByte('\n')
	}

	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return nil, err
	}

	return &WriteResult{Path: path, Corrected: path != output}, nil
}

// writeFileAtomic creates path's parent directories, writes data to a
// temporary sibling, and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}

	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(path), shared.GenerateID()))
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to finalize file: %w", err)
	}
	return nil
}
