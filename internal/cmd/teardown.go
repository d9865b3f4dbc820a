package cmd

import (
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/gosweep/internal/observability"
	"github.com/3leaps/gosweep/pkg/bootstrap"
	"github.com/3leaps/gosweep/pkg/manifest"
)

var teardownCmd = &cobra.Command{
	Use:   "teardown",
	Short: "Delete a sample bucket and its contents",
	Long: `Delete every object in the sample bucket and remove the bucket.

Safe to run after a sweep has already deleted part of the bucket.

Example:
  gosweep teardown --job sweep.yaml --bucket gosweep-sample`,
	RunE: runTeardown,
}

var (
	teardownJobPath string
	teardownBucket  string
)

func init() {
	rootCmd.AddCommand(teardownCmd)

	teardownCmd.Flags().StringVarP(&teardownJobPath, "job", "j", "", "Path to job manifest (required)")
	teardownCmd.Flags().StringVar(&teardownBucket, "bucket", "gosweep-sample", "Sample bucket name")

	_ = teardownCmd.MarkFlagRequired("job")
}

func runTeardown(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	m, err := manifest.Load(teardownJobPath)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid manifest", err)
	}

	client, err := createClient(ctx, m)
	if err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to connect to storage", err)
	}
	defer func() { _ = client.Close() }()

	if err := bootstrap.Teardown(ctx, client, teardownBucket); err != nil {
		observability.CLILogger.Error("Teardown failed",
			zap.String("bucket", teardownBucket),
			zap.Error(err))
		return exitError(foundry.ExitExternalServiceUnavailable, "Teardown failed", err)
	}

	observability.CLILogger.Info("Removed sample bucket", zap.String("bucket", teardownBucket))
	return nil
}
