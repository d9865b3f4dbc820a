// Package match evaluates glob patterns against bucket names and object keys.
//
// A sweep can be scoped to a subset of buckets (e.g. only "tmp-*") and a
// subset of keys inside them. Patterns use doublestar globs, so "**" crosses
// path separators in object keys.
package match

import (
	"errors"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher evaluates include/exclude glob patterns against names.
//
//   - Include patterns: the name must match at least one. An empty include
//     list matches everything.
//   - Exclude patterns: the name must not match any.
//
// The Matcher is safe for concurrent use after creation.
type Matcher struct {
	includes []string
	excludes []string
}

// Config configures a Matcher.
type Config struct {
	// Includes are glob patterns that names must match (at least one).
	// Empty means match everything.
	Includes []string

	// Excludes are glob patterns that names must not match (any).
	Excludes []string
}

// ErrInvalidPattern is returned when a pattern cannot be compiled.
var ErrInvalidPattern = errors.New("invalid glob pattern")

// PatternError wraps pattern-related errors with context.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return "pattern " + e.Pattern + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// New creates a new Matcher from the given configuration.
//
// Returns an error if any pattern is invalid (cannot be compiled).
func New(cfg Config) (*Matcher, error) {
	for _, raw := range append(append([]string{}, cfg.Includes...), cfg.Excludes...) {
		if !doublestar.ValidatePattern(raw) {
			return nil, &PatternError{Pattern: raw, Err: ErrInvalidPattern}
		}
	}
	return &Matcher{
		includes: cfg.Includes,
		excludes: cfg.Excludes,
	}, nil
}

// Match returns true if the name matches the include/exclude patterns.
func (m *Matcher) Match(name string) bool {
	if len(m.includes) > 0 {
		matched := false
		for _, p := range m.includes {
			if ok, _ := doublestar.Match(p, name); ok {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, p := range m.excludes {
		if ok, _ := doublestar.Match(p, name); ok {
			return false
		}
	}

	return true
}

// Empty returns true if the matcher has no patterns and matches everything.
func (m *Matcher) Empty() bool {
	return len(m.includes) == 0 && len(m.excludes) == 0
}
