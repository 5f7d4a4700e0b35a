package dupescan

import (
	"fmt"
	"path/filepath"
	"regexp"
)

// ExcludeMatcher filters walk entries against user-supplied regular
// expression patterns. Patterns match against slash-separated paths
// relative to the scan root. An excluded directory is not traversed;
// an excluded file is not indexed.
//
// Hidden entries (names beginning with ".") are a separate hard policy
// applied by the Scanner and need no pattern here.
type ExcludeMatcher struct {
	patterns []*regexp.Regexp
}

// NewExcludeMatcher compiles the given patterns. A bad pattern is a
// configuration error and fails the whole set.
func NewExcludeMatcher(patterns []string) (*ExcludeMatcher, error) {
	em := &ExcludeMatcher{
		patterns: make([]*regexp.Regexp, 0, len(patterns)),
	}

	for _, patternStr := range patterns {
		if patternStr == "" {
			continue
		}
		pattern, err := regexp.Compile(patternStr)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %s - %w", patternStr, err)
		}
		em.patterns = append(em.patterns, pattern)
	}

	return em, nil
}

// Match checks if a path should be excluded based on patterns
func (em *ExcludeMatcher) Match(relativePath string) bool {
	if em == nil || len(em.patterns) == 0 {
		return false
	}

	// Normalise path separators to forward slashes for consistent pattern matching
	normalisedPath := filepath.ToSlash(relativePath)

	for _, pattern := range em.patterns {
		if pattern.MatchString(normalisedPath) {
			return true
		}
	}

	return false
}
