package shared

import (
	"fmt"
	"path/filepath"
	"strings"
)

// EnsureExtension returns path with its extension replaced by ext when the
// current extension differs (exact, case-sensitive match). The extension may
// be given with or without the leading dot. Pure function: no I/O, no
// failure mode, idempotent.
func EnsureExtension(path, ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if current := filepath.Ext(path); current != ext {
		return strings.TrimSuffix(path, current) + ext
	}
	return path
}

// RelativeTo expresses target relative to the base directory, walking up with
// ".." segments when target is not a descendant of base. Both paths are made
// absolute against the working directory first.
//
// Returns [ErrNoRelativePath] when no relative path can be computed (paths on
// incomparable roots).
func RelativeTo(target, base string) (string, error) {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoRelativePath, err)
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoRelativePath, err)
	}

	rel, err := filepath.Rel(absBase, absTarget)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoRelativePath, err)
	}
	return rel, nil
}
