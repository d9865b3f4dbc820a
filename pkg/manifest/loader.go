package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/3leaps/gosweep/pkg/retention"
)

// SupportedVersion is the manifest schema version this loader accepts.
const SupportedVersion = "1.0"

// ValidationError represents a single validation issue.
type ValidationError struct {
	// Path points at the problematic field (e.g., "retention.max_age").
	Path string

	// Message describes the validation failure.
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Load reads and validates a manifest from the given file path.
//
// The file format is determined by extension: .yaml/.yml for YAML, .json for
// JSON. If the extension is unrecognized, YAML is attempted first (YAML is a
// JSON superset, so plain JSON still parses).
//
// After parsing, the manifest is validated and defaults are applied to
// optional fields.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("manifest file not found: %s", path)
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied reading manifest: %s", path)
		}
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	return LoadFromBytes(data, path)
}

// LoadFromBytes parses and validates a manifest from raw bytes.
//
// The path parameter is used for error messages and format detection.
// If path is empty, format detection falls back to trying YAML first.
func LoadFromBytes(data []byte, path string) (*Manifest, error) {
	if len(data) == 0 {
		return nil, errors.New("manifest file is empty")
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.applyDefaults()

	return &m, nil
}

// Validate checks manifest fields for consistency.
//
// Validation errors identify the failing field by path.
func (m *Manifest) Validate() error {
	if m.Version == "" {
		return ValidationError{Path: "version", Message: "version is required"}
	}
	if m.Version != SupportedVersion {
		return ValidationError{Path: "version", Message: fmt.Sprintf("unsupported version %q (want %q)", m.Version, SupportedVersion)}
	}

	switch m.Connection.Client {
	case "s3":
	case "file":
		if m.Connection.BaseDir == "" {
			return ValidationError{Path: "connection.base_dir", Message: "base_dir is required for the file client"}
		}
	case "":
		return ValidationError{Path: "connection.client", Message: "client is required"}
	default:
		return ValidationError{Path: "connection.client", Message: fmt.Sprintf("unsupported client %q", m.Connection.Client)}
	}

	if m.Connection.Namespace == "" {
		return ValidationError{Path: "connection.namespace", Message: "namespace is required"}
	}

	if (m.Retention.MaxAge == "") == (m.Retention.MinAge == "") {
		return ValidationError{Path: "retention", Message: "exactly one of max_age or min_age must be set"}
	}
	if m.Retention.MaxAge != "" {
		if _, err := retention.ParseAge(m.Retention.MaxAge); err != nil {
			return ValidationError{Path: "retention.max_age", Message: err.Error()}
		}
	}
	if m.Retention.MinAge != "" {
		if _, err := retention.ParseAge(m.Retention.MinAge); err != nil {
			return ValidationError{Path: "retention.min_age", Message: err.Error()}
		}
	}

	if c := m.Sweep.Concurrency; c < 0 || c > 32 {
		return ValidationError{Path: "sweep.concurrency", Message: fmt.Sprintf("must be between 1 and 32, got %d", c)}
	}
	if m.Sweep.RateLimit < 0 {
		return ValidationError{Path: "sweep.rate_limit", Message: "must be >= 0"}
	}
	if r := m.Sweep.MaxRetries; r < 0 || r > 10 {
		return ValidationError{Path: "sweep.max_retries", Message: fmt.Sprintf("must be between 1 and 10, got %d", r)}
	}
	switch m.Sweep.Preflight {
	case "", "plan-only", "read-safe", "delete-probe":
	default:
		return ValidationError{Path: "sweep.preflight", Message: fmt.Sprintf("unsupported mode %q", m.Sweep.Preflight)}
	}

	return nil
}

// Policy builds the retention policy configured in the manifest.
func (m *Manifest) Policy() (retention.Policy, error) {
	if m.Retention.MaxAge != "" {
		age, err := retention.ParseAge(m.Retention.MaxAge)
		if err != nil {
			return nil, err
		}
		return retention.NewMaxAge(age)
	}
	age, err := retention.ParseAge(m.Retention.MinAge)
	if err != nil {
		return nil, err
	}
	return retention.NewMinAge(age)
}

// applyDefaults fills in optional fields after validation.
func (m *Manifest) applyDefaults() {
	if m.Sweep.Concurrency == 0 {
		m.Sweep.Concurrency = 4
	}
	if m.Sweep.MaxRetries == 0 {
		m.Sweep.MaxRetries = 4
	}
	if m.Sweep.Preflight == "" {
		m.Sweep.Preflight = "read-safe"
	}
	if m.Output.Destination == "" {
		m.Output.Destination = "stdout"
	}
	if m.Output.ProgressEvery == 0 {
		m.Output.ProgressEvery = 1000
	}
}
