package library

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// ScanResult summarizes a completed library scan.
type ScanResult struct {
	Scanned int // files seen on disk
	Added   int // new records created
	Updated int // existing records refreshed
	Removed int // records pruned for vanished files
}

// Scan walks the library root, upserting a record per media file and pruning
// records whose files no longer exist. Hidden directories (including the
// data directory) are skipped. Only files whose extension appears in exts
// are recorded.
func (s *Store) Scan(ctx context.Context, exts []string) (*ScanResult, error) {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed["."+strings.ToLower(strings.TrimPrefix(ext, "."))] = true
	}

	started := time.Now()
	result := &ScanResult{}

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if d.IsDir() {
			if path != s.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		_, added, err := s.Upsert(filepath.Dir(rel), filepath.Base(rel), info.Size(), info.ModTime(), time.Now())
		if err != nil {
			return err
		}

		result.Scanned++
		if added {
			result.Added++
		} else {
			result.Updated++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	removed, err := s.PruneBefore(started)
	if err != nil {
		return nil, err
	}
	result.Removed = removed

	return result, nil
}
