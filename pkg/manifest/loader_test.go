package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3leaps/gosweep/pkg/retention"
)

const validYAML = `
version: "1.0"
connection:
  client: s3
  namespace: ns1
  region: us-east-1
retention:
  max_age: 24h
match:
  buckets:
    includes:
      - "tmp-*"
sweep:
  concurrency: 8
output:
  destination: stdout
`

func TestLoadFromBytesYAML(t *testing.T) {
	m, err := LoadFromBytes([]byte(validYAML), "job.yaml")
	require.NoError(t, err)

	assert.Equal(t, "1.0", m.Version)
	assert.Equal(t, "s3", m.Connection.Client)
	assert.Equal(t, "ns1", m.Connection.Namespace)
	assert.Equal(t, "24h", m.Retention.MaxAge)
	assert.Equal(t, []string{"tmp-*"}, m.Match.Buckets.Includes)
	assert.Equal(t, 8, m.Sweep.Concurrency)
}

func TestLoadFromBytesJSON(t *testing.T) {
	data := `{
		"version": "1.0",
		"connection": {"client": "file", "namespace": "local", "base_dir": "/srv/data"},
		"retention": {"min_age": "7d", "dry_run": true}
	}`

	m, err := LoadFromBytes([]byte(data), "job.json")
	require.NoError(t, err)
	assert.Equal(t, "file", m.Connection.Client)
	assert.Equal(t, "/srv/data", m.Connection.BaseDir)
	assert.Equal(t, "7d", m.Retention.MinAge)
	assert.True(t, m.Retention.DryRun)
}

func TestLoadFromBytesDefaults(t *testing.T) {
	data := `
version: "1.0"
connection:
  client: s3
  namespace: ns1
retention:
  max_age: 1d
`
	m, err := LoadFromBytes([]byte(data), "job.yaml")
	require.NoError(t, err)

	assert.Equal(t, 4, m.Sweep.Concurrency)
	assert.Equal(t, 4, m.Sweep.MaxRetries)
	assert.Equal(t, "read-safe", m.Sweep.Preflight)
	assert.Equal(t, "stdout", m.Output.Destination)
	assert.Equal(t, 1000, m.Output.ProgressEvery)
	assert.True(t, m.Output.ProgressEnabled())
}

func TestLoadFromBytesEmpty(t *testing.T) {
	_, err := LoadFromBytes(nil, "job.yaml")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validYAML), 0o644))

	m, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ns1", m.Connection.Namespace)
}

func TestValidateErrors(t *testing.T) {
	base := func() Manifest {
		return Manifest{
			Version: "1.0",
			Connection: ConnectionConfig{
				Client:    "s3",
				Namespace: "ns1",
			},
			Retention: RetentionConfig{MaxAge: "24h"},
		}
	}

	tests := []struct {
		name     string
		mutate   func(*Manifest)
		wantPath string
	}{
		{"missing version", func(m *Manifest) { m.Version = "" }, "version"},
		{"unsupported version", func(m *Manifest) { m.Version = "2.0" }, "version"},
		{"missing client", func(m *Manifest) { m.Connection.Client = "" }, "connection.client"},
		{"unknown client", func(m *Manifest) { m.Connection.Client = "gcs" }, "connection.client"},
		{"file client without base_dir", func(m *Manifest) { m.Connection.Client = "file" }, "connection.base_dir"},
		{"missing namespace", func(m *Manifest) { m.Connection.Namespace = "" }, "connection.namespace"},
		{"no retention age", func(m *Manifest) { m.Retention.MaxAge = "" }, "retention"},
		{"both retention ages", func(m *Manifest) { m.Retention.MinAge = "1h" }, "retention"},
		{"bad max_age", func(m *Manifest) { m.Retention.MaxAge = "fortnight" }, "retention.max_age"},
		{"concurrency out of range", func(m *Manifest) { m.Sweep.Concurrency = 64 }, "sweep.concurrency"},
		{"negative rate limit", func(m *Manifest) { m.Sweep.RateLimit = -1 }, "sweep.rate_limit"},
		{"retries out of range", func(m *Manifest) { m.Sweep.MaxRetries = 11 }, "sweep.max_retries"},
		{"unknown preflight mode", func(m *Manifest) { m.Sweep.Preflight = "yolo" }, "sweep.preflight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := base()
			tt.mutate(&m)

			err := m.Validate()
			require.Error(t, err)

			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantPath, verr.Path)
		})
	}
}

func TestPolicy(t *testing.T) {
	m := Manifest{Retention: RetentionConfig{MaxAge: "1d"}}
	p, err := m.Policy()
	require.NoError(t, err)

	max, ok := p.(*retention.MaxAge)
	require.True(t, ok)
	assert.Equal(t, 24*time.Hour, max.Age())

	m = Manifest{Retention: RetentionConfig{MinAge: "48h"}}
	p, err = m.Policy()
	require.NoError(t, err)

	min, ok := p.(*retention.MinAge)
	require.True(t, ok)
	assert.Equal(t, 48*time.Hour, min.Age())
}

func TestProgressEnabled(t *testing.T) {
	off := false
	on := true

	assert.True(t, OutputConfig{}.ProgressEnabled())
	assert.True(t, OutputConfig{Progress: &on}.ProgressEnabled())
	assert.False(t, OutputConfig{Progress: &off}.ProgressEnabled())
}
