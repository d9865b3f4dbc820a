// Package retention defines the predicates that decide whether an object is
// eligible for deletion during a sweep.
//
// Policies are pure functions of (now, created). The sweep engine captures
// now once per run and threads it through every evaluation, so a single run
// applies one consistent cutoff regardless of how long listing takes.
package retention

import (
	"errors"
	"fmt"
	"time"
)

// Policy decides whether an object is eligible for deletion.
//
// Implementations must be pure: no clock reads, no I/O. The engine supplies
// the run's snapshot time.
type Policy interface {
	// Eligible returns true if an object created at the given time should
	// be deleted when evaluated against now.
	Eligible(now, created time.Time) bool

	// String returns a human-readable description of the policy.
	String() string
}

// Policy errors.
var (
	ErrInvalidAge = errors.New("invalid age value")
)

// MaxAge deletes objects younger than the bound.
//
// An object is eligible iff truncate(now) - truncate(created) < age, where
// truncate drops sub-second precision and normalizes to UTC. The truncation
// makes the boundary exact at whole seconds: an object aged exactly the
// bound is retained.
type MaxAge struct {
	age time.Duration
}

// NewMaxAge creates a MaxAge policy. The age must be positive.
func NewMaxAge(age time.Duration) (*MaxAge, error) {
	if age <= 0 {
		return nil, fmt.Errorf("%w: max age must be positive, got %s", ErrInvalidAge, age)
	}
	return &MaxAge{age: age}, nil
}

// Eligible reports whether the object is younger than the age bound.
func (p *MaxAge) Eligible(now, created time.Time) bool {
	return truncate(now).Sub(truncate(created)) < p.age
}

// Age returns the configured bound.
func (p *MaxAge) Age() time.Duration {
	return p.age
}

// String returns a human-readable description.
func (p *MaxAge) String() string {
	return fmt.Sprintf("max_age: younger than %s", p.age)
}

// MinAge deletes objects older than the bound.
//
// This is the conventional purge direction: an object is eligible iff
// truncate(now) - truncate(created) >= age.
type MinAge struct {
	age time.Duration
}

// NewMinAge creates a MinAge policy. The age must be positive.
func NewMinAge(age time.Duration) (*MinAge, error) {
	if age <= 0 {
		return nil, fmt.Errorf("%w: min age must be positive, got %s", ErrInvalidAge, age)
	}
	return &MinAge{age: age}, nil
}

// Eligible reports whether the object is at least as old as the age bound.
func (p *MinAge) Eligible(now, created time.Time) bool {
	return truncate(now).Sub(truncate(created)) >= p.age
}

// Age returns the configured bound.
func (p *MinAge) Age() time.Duration {
	return p.age
}

// String returns a human-readable description.
func (p *MinAge) String() string {
	return fmt.Sprintf("min_age: at least %s old", p.age)
}

// ParseAge parses a retention age string.
//
// Supported formats:
//   - Go durations: "24h", "90m", "1h30m"
//   - Day shorthand: "1d", "7d" (d = 24h)
func ParseAge(s string) (time.Duration, error) {
	if s == "" {
		return 0, ErrInvalidAge
	}

	if n := len(s); s[n-1] == 'd' {
		var days float64
		if _, err := fmt.Sscanf(s[:n-1], "%f", &days); err != nil || days < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAge, s)
		}
		return time.Duration(days * 24 * float64(time.Hour)), nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAge, s)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: negative age %q", ErrInvalidAge, s)
	}
	return d, nil
}

// truncate drops sub-second precision and normalizes to UTC.
//
// Timestamps carrying explicit offsets are converted to UTC before
// truncation, so the whole-second comparison is offset-independent.
func truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
