package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kaitan-stock/distributed/internal/observability"
	"github.com/kaitan-stock/distributed/pkg/listing"
	"github.com/kaitan-stock/distributed/pkg/output"
)

var lsCmd = &cobra.Command{
	Use:   "ls <uri>",
	Short: "List keys under a prefix",
	Long: `List object keys under a prefix in lexicographic order.

With --delimiter, keys sharing a common segment after the prefix collapse
into one group entry each, directory-style.

Examples:
  distread ls s3://bucket/
  distread ls s3://bucket/tmp/test/ --delimiter /
  distread ls s3://bucket/tmp/ --output table`,
	Args: cobra.ExactArgs(1),
	RunE: runLs,
}

var (
	lsRegion    string
	lsProfile   string
	lsEndpoint  string
	lsDelimiter string
	lsOutput    string
)

func init() {
	rootCmd.AddCommand(lsCmd)

	lsCmd.Flags().StringVarP(&lsRegion, "region", "r", "", "AWS region")
	lsCmd.Flags().StringVarP(&lsProfile, "profile", "p", "", "AWS profile")
	lsCmd.Flags().StringVar(&lsEndpoint, "endpoint", "", "Custom S3 endpoint")
	lsCmd.Flags().StringVar(&lsDelimiter, "delimiter", "", "Delimiter for grouping keys")
	lsCmd.Flags().StringVar(&lsOutput, "output", "jsonl", "Output format (jsonl|table)")
}

func runLs(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	parsed, err := ParseURI(args[0])
	if err != nil {
		observability.CLILogger.Error("Invalid URI", zap.String("uri", args[0]), zap.Error(err))
		return err
	}

	st, err := newStore(ctx, lsRegion, lsEndpoint, lsProfile)
	if err != nil {
		observability.CLILogger.Error("Failed to create store", zap.Error(err))
		return err
	}
	defer func() { _ = st.Close() }()

	entries, err := listing.List(ctx, st, parsed.Bucket, parsed.Key, lsDelimiter)
	if err != nil {
		observability.CLILogger.Error("Listing failed",
			zap.String("bucket", parsed.Bucket),
			zap.String("prefix", parsed.Key),
			zap.Error(err),
		)
		return err
	}

	if lsOutput == "table" {
		return lsTable(entries)
	}
	if lsOutput != "jsonl" {
		return fmt.Errorf("invalid --output value %q (expected jsonl or table)", lsOutput)
	}

	w := output.NewJSONLWriter(os.Stdout, uuid.New().String(), parsed.Backend)
	for _, e := range entries {
		rec := &output.EntryRecord{Key: e.Key, IsGroup: e.IsGroup}
		if !e.IsGroup {
			rec.Size = e.Size
			rec.ETag = e.ETag
			lm := e.LastModified
			rec.LastModified = &lm
		}
		if err := w.WriteEntry(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

func lsTable(entries []listing.Entry) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, "KEY\tSIZE\tTYPE"); err != nil {
		return err
	}
	for _, e := range entries {
		kind := "object"
		size := fmt.Sprintf("%d", e.Size)
		if e.IsGroup {
			kind = "group"
			size = "-"
		}
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Key, size, kind); err != nil {
			return err
		}
	}
	return tw.Flush()
}
