package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/gosweep/internal/observability"
	"github.com/3leaps/gosweep/pkg/manifest"
	"github.com/3leaps/gosweep/pkg/match"
	"github.com/3leaps/gosweep/pkg/output"
	"github.com/3leaps/gosweep/pkg/preflight"
	"github.com/3leaps/gosweep/pkg/storage"
	"github.com/3leaps/gosweep/pkg/storage/file"
	"github.com/3leaps/gosweep/pkg/storage/s3"
	"github.com/3leaps/gosweep/pkg/sweep"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run a sweep job from manifest",
	Long: `Run a retention sweep as defined in a YAML or JSON manifest file.

The manifest specifies the storage connection, retention policy, bucket and
key matching rules, sweep behavior, and output configuration.

Example:
  gosweep sweep --job sweep.yaml
  gosweep sweep --job sweep.yaml --output results.jsonl
  gosweep sweep --job sweep.yaml --dry-run
  gosweep sweep --job sweep.yaml --schedule "0 * * * *"`,
	RunE: runSweep,
}

var (
	sweepJobPath  string
	sweepOutput   string
	sweepQuiet    bool
	sweepDryRun   bool
	sweepSchedule string
)

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVarP(&sweepJobPath, "job", "j", "", "Path to job manifest (required)")
	sweepCmd.Flags().StringVarP(&sweepOutput, "output", "o", "", "Override output destination")
	sweepCmd.Flags().BoolVarP(&sweepQuiet, "quiet", "q", false, "Suppress progress records")
	sweepCmd.Flags().BoolVar(&sweepDryRun, "dry-run", false, "Report matches without deleting")
	sweepCmd.Flags().StringVar(&sweepSchedule, "schedule", "", "Cron expression for periodic sweeps (runs until interrupted)")

	_ = sweepCmd.MarkFlagRequired("job")
}

func runSweep(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(sweepJobPath)
	if err != nil {
		observability.CLILogger.Error("Failed to load manifest",
			zap.String("path", sweepJobPath),
			zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}

	observability.CLILogger.Debug("Loaded manifest",
		zap.String("path", sweepJobPath),
		zap.String("client", m.Connection.Client),
		zap.String("namespace", m.Connection.Namespace))

	// Apply flag overrides
	if sweepOutput != "" {
		m.Output.Destination = sweepOutput
	}
	if sweepDryRun {
		m.Retention.DryRun = true
	}
	if sweepQuiet {
		enabled := false
		m.Output.Progress = &enabled
	}

	if sweepSchedule == "" {
		return executeSweep(ctx, m)
	}
	return scheduleSweeps(ctx, m, sweepSchedule)
}

// scheduleSweeps runs a sweep on a cron schedule until the context ends.
//
// Runs never overlap: if a sweep is still in flight when the next tick
// fires, the tick is skipped.
func scheduleSweeps(ctx context.Context, m *manifest.Manifest, spec string) error {
	c := cron.New()

	running := make(chan struct{}, 1)
	_, err := c.AddFunc(spec, func() {
		select {
		case running <- struct{}{}:
		default:
			observability.CLILogger.Warn("Previous sweep still running, skipping tick")
			return
		}
		defer func() { <-running }()

		if err := executeSweep(ctx, m); err != nil && ctx.Err() == nil {
			observability.CLILogger.Error("Scheduled sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid --schedule expression", err)
	}

	observability.CLILogger.Info("Sweeping on schedule", zap.String("cron", spec))
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// executeSweep runs one full sweep for the manifest.
func executeSweep(ctx context.Context, m *manifest.Manifest) error {
	jobID := uuid.New().String()

	client, err := createClient(ctx, m)
	if err != nil {
		observability.CLILogger.Error("Failed to create storage client", zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage", err)
	}
	defer func() { _ = client.Close() }()

	policy, err := m.Policy()
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid retention policy", err)
	}

	bucketMatcher, keyMatcher, err := buildMatchers(m)
	if err != nil {
		observability.CLILogger.Error("Invalid match patterns", zap.Error(err))
		return exitError(foundry.ExitInvalidArgument, "Invalid match patterns", err)
	}

	writer, cleanup, err := createWriter(m, jobID)
	if err != nil {
		observability.CLILogger.Error("Failed to create writer", zap.Error(err))
		return exitError(foundry.ExitFileWriteError, "Failed to create output", err)
	}
	defer cleanup()

	// Preflight checks (plan-only/read-safe/delete-probe)
	pfSpec := preflight.Spec{
		Mode:         preflight.Mode(m.Sweep.Preflight),
		BucketPrefix: m.Connection.Compartment,
	}
	pfRec, pfErr := preflight.Sweep(ctx, client, pfSpec)
	if err := writer.WritePreflight(ctx, pfRec); err != nil {
		observability.CLILogger.Warn("Failed to write preflight record", zap.Error(err))
	}
	if pfErr != nil {
		observability.CLILogger.Error("Preflight failed", zap.Error(pfErr))
		return exitError(foundry.ExitExternalServiceUnavailable, "Preflight failed", pfErr)
	}

	cfg := sweep.Config{
		Concurrency:   m.Sweep.Concurrency,
		RateLimit:     m.Sweep.RateLimit,
		MaxRetries:    uint(m.Sweep.MaxRetries),
		BucketPrefix:  m.Connection.Compartment,
		ProgressEvery: m.Output.ProgressEvery,
		DryRun:        m.Retention.DryRun,
	}
	if !m.Output.ProgressEnabled() {
		cfg.ProgressEvery = -1
	}

	s := sweep.New(client, policy, writer, jobID, cfg)
	if bucketMatcher != nil {
		s.WithBucketMatcher(bucketMatcher)
	}
	if keyMatcher != nil {
		s.WithKeyMatcher(keyMatcher)
	}

	observability.CLILogger.Info("Starting sweep",
		zap.String("job_id", jobID),
		zap.String("namespace", m.Connection.Namespace),
		zap.String("policy", policy.String()),
		zap.Bool("dry_run", cfg.DryRun),
		zap.Int("concurrency", cfg.Concurrency))

	report, err := s.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			var deleted int64
			if report != nil {
				deleted = report.ObjectsDeleted
			}
			observability.CLILogger.Warn("Sweep cancelled",
				zap.String("job_id", jobID),
				zap.Int64("objects_deleted", deleted))
			return exitError(foundry.ExitSignalInt, "Sweep cancelled", err)
		}
		observability.CLILogger.Error("Sweep failed",
			zap.String("job_id", jobID),
			zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Sweep failed", err)
	}

	observability.CLILogger.Info("Sweep completed",
		zap.String("job_id", jobID),
		zap.Int("buckets", len(report.Buckets)),
		zap.Int64("objects_listed", report.ObjectsListed),
		zap.Int64("objects_matched", report.ObjectsMatched),
		zap.Int64("objects_deleted", report.ObjectsDeleted),
		zap.Int64("objects_failed", report.ObjectsFailed),
		zap.Duration("duration", report.Duration))

	return nil
}

// buildMatchers compiles the manifest's bucket and key glob patterns.
func buildMatchers(m *manifest.Manifest) (buckets, keys *match.Matcher, err error) {
	if !m.Match.Buckets.Empty() {
		buckets, err = match.New(match.Config{
			Includes: m.Match.Buckets.Includes,
			Excludes: m.Match.Buckets.Excludes,
		})
		if err != nil {
			return nil, nil, err
		}
	}
	if !m.Match.Keys.Empty() {
		keys, err = match.New(match.Config{
			Includes: m.Match.Keys.Includes,
			Excludes: m.Match.Keys.Excludes,
		})
		if err != nil {
			return nil, nil, err
		}
	}
	return buckets, keys, nil
}

// createClient creates a storage client from manifest configuration.
func createClient(ctx context.Context, m *manifest.Manifest) (storage.Client, error) {
	switch m.Connection.Client {
	case "file":
		return file.New(file.Config{
			BaseDir:   m.Connection.BaseDir,
			Namespace: m.Connection.Namespace,
		})
	default:
		return s3.New(ctx, s3.Config{
			Namespace: m.Connection.Namespace,
			Region:    m.Connection.Region,
			Endpoint:  m.Connection.Endpoint,
			Profile:   m.Connection.Profile,
			// S3-compatible services (moto, MinIO, etc.) require path style.
			ForcePathStyle: m.Connection.Endpoint != "",
		})
	}
}

// createWriter creates an output writer from manifest configuration.
// Returns the writer, a cleanup function, and any error.
func createWriter(m *manifest.Manifest, jobID string) (output.Writer, func(), error) {
	dest := m.Output.Destination

	if dest == "" || dest == "stdout" {
		w := output.NewJSONLWriter(os.Stdout, jobID, m.Connection.Client)
		return w, func() { _ = w.Close() }, nil
	}

	path := strings.TrimPrefix(dest, "file:")
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	w := output.NewJSONLWriter(f, jobID, m.Connection.Client)
	cleanup := func() {
		_ = w.Close()
		_ = f.Close()
	}
	return w, cleanup, nil
}
