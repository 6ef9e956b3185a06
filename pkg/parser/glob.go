package parser

import (
	"fmt"
	"path/filepath"
	"sort"
)

// ExpandGlobs expands log paths and glob patterns into a deduplicated file
// list. Arguments keep their command-line order; the matches of a single
// glob are sorted so per-rank logs are read in a stable order.
// Patterns that match nothing are returned as-is so that opening them
// reports the missing file.
func ExpandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var result []string

	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
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

		sort.Strings(matches)
		for _, match := range matches {
			add(match)
		}
	}

	return result, nil
}
