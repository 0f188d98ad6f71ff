package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kaitan-stock/distributed/internal/observability"
	"github.com/kaitan-stock/distributed/pkg/content"
)

var catCmd = &cobra.Command{
	Use:   "cat <uri>",
	Short: "Print the content of one key",
	Long: `Fetch the entire content of a single key and write it to stdout.

Examples:
  distread cat s3://bucket/tmp/test/file1`,
	Args: cobra.ExactArgs(1),
	RunE: runCat,
}

var (
	catRegion   string
	catProfile  string
	catEndpoint string
)

func init() {
	rootCmd.AddCommand(catCmd)

	catCmd.Flags().StringVarP(&catRegion, "region", "r", "", "AWS region")
	catCmd.Flags().StringVarP(&catProfile, "profile", "p", "", "AWS profile")
	catCmd.Flags().StringVar(&catEndpoint, "endpoint", "", "Custom S3 endpoint")
}

func runCat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	parsed, err := ParseURI(args[0])
	if err != nil {
		observability.CLILogger.Error("Invalid URI", zap.String("uri", args[0]), zap.Error(err))
		return err
	}
	if parsed.IsPrefix() {
		return fmt.Errorf("cat requires a concrete key, got prefix %q", parsed.String())
	}

	st, err := newStore(ctx, catRegion, catEndpoint, catProfile)
	if err != nil {
		observability.CLILogger.Error("Failed to create store", zap.Error(err))
		return err
	}
	defer func() { _ = st.Close() }()

	data, err := content.ReadKey(ctx, st, parsed.Bucket, parsed.Key)
	if err != nil {
		observability.CLILogger.Error("Read failed",
			zap.String("bucket", parsed.Bucket),
			zap.String("key", parsed.Key),
			zap.Error(err),
		)
		return err
	}

	_, err = os.Stdout.Write(data)
	return err
}
