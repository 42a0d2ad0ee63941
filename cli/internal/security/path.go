package security

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ResolveWithin joins a relative path onto baseDir and returns the absolute
// result, rejecting paths that climb out of baseDir with "..". Absolute paths
// are returned cleaned and unchecked: they were written on purpose.
//
//	ResolveWithin("/srv/cm", "workflows")      -> "/srv/cm/workflows"
//	ResolveWithin("/srv/cm", "../../etc")      -> error
//	ResolveWithin("/srv/cm", "/var/workflows") -> "/var/workflows"
func ResolveWithin(baseDir, path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory %q: %w", baseDir, err)
	}

	target := filepath.Join(absBase, path)
	rel, err := filepath.Rel(absBase, target)
	if err != nil {
		return "", fmt.Errorf("invalid path relationship between %q and %q: %w", absBase, target, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path traversal detected: %q escapes %q", path, baseDir)
	}

	return target, nil
}
