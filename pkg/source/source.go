// Package source locates and reads build layout report files.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"unicode/utf8"
)

// ErrNotText is returned for report files that are not valid UTF-8.
var ErrNotText = errors.New("not a UTF-8 text file")

// ExpandGlobs expands report paths and glob patterns into a sorted,
// deduplicated list. Patterns with no matches are kept as literal paths so
// the read reports a useful file-not-found error.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			add(pattern)
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}

	slices.Sort(paths)
	return paths, nil
}

// Read loads a whole report file into memory.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided report path is expected
	if err != nil {
		return "", fmt.Errorf("reading report: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("reading report %s: %w", path, ErrNotText)
	}
	return string(data), nil
}
