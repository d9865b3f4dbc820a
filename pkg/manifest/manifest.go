// Package manifest provides loading and validation of gosweep job manifests.
//
// A job manifest is a YAML or JSON file that configures all aspects of a
// sweep job: storage connection, bucket/key matching, retention policy,
// sweep behavior, and output.
//
// Example manifest (YAML):
//
//	version: "1.0"
//	connection:
//	  client: s3
//	  namespace: ns1
//	  region: us-east-1
//	retention:
//	  max_age: 24h
//	match:
//	  buckets:
//	    includes:
//	      - "tmp-*"
//	sweep:
//	  concurrency: 4
//	output:
//	  destination: stdout
//	  progress: true
package manifest

// Manifest represents a validated job manifest.
//
// Required fields are Version, Connection, and Retention. Match, Sweep, and
// Output are optional with sensible defaults.
type Manifest struct {
	// Schema is an optional JSON Schema reference for editor support.
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty"`

	// Version is the manifest schema version. Must be "1.0".
	Version string `json:"version" yaml:"version"`

	// Connection configures the storage backend.
	Connection ConnectionConfig `json:"connection" yaml:"connection"`

	// Retention configures the deletion predicate.
	Retention RetentionConfig `json:"retention" yaml:"retention"`

	// Match restricts the sweep to matching buckets and keys (optional).
	Match MatchConfig `json:"match,omitempty" yaml:"match,omitempty"`

	// Sweep configures sweep behavior (optional).
	Sweep SweepConfig `json:"sweep,omitempty" yaml:"sweep,omitempty"`

	// Output configures output destination and format (optional).
	Output OutputConfig `json:"output,omitempty" yaml:"output,omitempty"`
}

// ConnectionConfig configures the storage backend connection.
type ConnectionConfig struct {
	// Client is the storage backend type: "s3" or "file".
	Client string `json:"client" yaml:"client"`

	// Namespace is the logical storage namespace. Required.
	Namespace string `json:"namespace" yaml:"namespace"`

	// Compartment restricts bucket enumeration to names with this prefix.
	// Optional.
	Compartment string `json:"compartment,omitempty" yaml:"compartment,omitempty"`

	// Region is the AWS region (e.g., "us-east-1"). S3 only, optional.
	Region string `json:"region,omitempty" yaml:"region,omitempty"`

	// Endpoint is a custom endpoint URL for S3-compatible storage. Optional.
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// Profile is the AWS credential profile name. S3 only, optional.
	Profile string `json:"profile,omitempty" yaml:"profile,omitempty"`

	// BaseDir is the root directory for the file backend. Required when
	// Client is "file".
	BaseDir string `json:"base_dir,omitempty" yaml:"base_dir,omitempty"`
}

// RetentionConfig configures the deletion predicate.
//
// Exactly one of MaxAge or MinAge must be set. MaxAge deletes objects
// younger than the bound; MinAge deletes objects at least that old.
// Ages accept Go durations ("24h", "90m") and day shorthand ("7d").
type RetentionConfig struct {
	// MaxAge deletes objects younger than this age.
	MaxAge string `json:"max_age,omitempty" yaml:"max_age,omitempty"`

	// MinAge deletes objects at least this old.
	MinAge string `json:"min_age,omitempty" yaml:"min_age,omitempty"`

	// DryRun evaluates and reports matches without deleting.
	DryRun bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// MatchConfig restricts the sweep to matching buckets and object keys.
type MatchConfig struct {
	// Buckets filters bucket names. Empty matches all buckets.
	Buckets GlobConfig `json:"buckets,omitempty" yaml:"buckets,omitempty"`

	// Keys filters object keys inside matched buckets. Empty matches all.
	Keys GlobConfig `json:"keys,omitempty" yaml:"keys,omitempty"`
}

// GlobConfig holds include/exclude glob pattern lists.
type GlobConfig struct {
	// Includes are glob patterns names must match (at least one).
	Includes []string `json:"includes,omitempty" yaml:"includes,omitempty"`

	// Excludes are glob patterns names must not match (any).
	Excludes []string `json:"excludes,omitempty" yaml:"excludes,omitempty"`
}

// Empty returns true if no patterns are configured.
func (g GlobConfig) Empty() bool {
	return len(g.Includes) == 0 && len(g.Excludes) == 0
}

// SweepConfig configures sweep behavior.
//
// All fields are optional with defaults applied during loading.
type SweepConfig struct {
	// Concurrency is the number of buckets swept in parallel.
	// Range: 1-32. Default: 4.
	Concurrency int `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`

	// RateLimit is the maximum storage requests per second (0 = unlimited).
	// Default: 0.
	RateLimit float64 `json:"rate_limit,omitempty" yaml:"rate_limit,omitempty"`

	// MaxRetries is the bounded backoff attempt limit for transient
	// storage errors. Range: 1-10. Default: 4.
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty"`

	// Preflight selects the preflight mode: "plan-only", "read-safe", or
	// "delete-probe". Default: "read-safe".
	Preflight string `json:"preflight,omitempty" yaml:"preflight,omitempty"`
}

// OutputConfig configures output destination and format.
type OutputConfig struct {
	// Destination is "stdout" or a file path (optionally "file:" prefixed).
	// Default: "stdout".
	Destination string `json:"destination,omitempty" yaml:"destination,omitempty"`

	// Progress enables periodic progress records. Default: true.
	Progress *bool `json:"progress,omitempty" yaml:"progress,omitempty"`

	// ProgressEvery emits a progress record every N deletions. Default: 1000.
	ProgressEvery int `json:"progress_every,omitempty" yaml:"progress_every,omitempty"`
}

// ProgressEnabled reports whether progress records should be emitted.
func (o OutputConfig) ProgressEnabled() bool {
	return o.Progress == nil || *o.Progress
}
