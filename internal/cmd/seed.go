package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/gosweep/internal/observability"
	"github.com/3leaps/gosweep/pkg/bootstrap"
	"github.com/3leaps/gosweep/pkg/manifest"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create and populate a sample bucket",
	Long: `Create a sample bucket and seed it with objects of staggered ages.

This brackets a demo or smoke-test sweep: seed, sweep, teardown. Backends
that cannot backdate timestamps (S3) get objects stamped with the current
time instead of the configured ages.

Example:
  gosweep seed --job sweep.yaml --bucket gosweep-sample`,
	RunE: runSeed,
}

var (
	seedJobPath string
	seedBucket  string
)

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVarP(&seedJobPath, "job", "j", "", "Path to job manifest (required)")
	seedCmd.Flags().StringVar(&seedBucket, "bucket", "gosweep-sample", "Sample bucket name")

	_ = seedCmd.MarkFlagRequired("job")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(seedJobPath)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}

	client, err := createClient(ctx, m)
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage", err)
	}
	defer func() { _ = client.Close() }()

	objects := bootstrap.DefaultSeedObjects()
	if err := bootstrap.Seed(ctx, client, seedBucket, objects); err != nil {
		observability.CLILogger.Error("Seeding failed",
			zap.String("bucket", seedBucket),
			zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Seeding failed", err)
	}

	observability.CLILogger.Info("Seeded sample bucket",
		zap.String("bucket", seedBucket),
		zap.Int("objects", len(objects)))
	return nil
}
