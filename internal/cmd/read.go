package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kaitan-stock/distributed/internal/observability"
	"github.com/kaitan-stock/distributed/pkg/cluster"
	"github.com/kaitan-stock/distributed/pkg/cluster/local"
	"github.com/kaitan-stock/distributed/pkg/content"
	"github.com/kaitan-stock/distributed/pkg/fanout"
	"github.com/kaitan-stock/distributed/pkg/match"
	"github.com/kaitan-stock/distributed/pkg/objstore"
	"github.com/kaitan-stock/distributed/pkg/output"
)

var readCmd = &cobra.Command{
	Use:   "read <uri>",
	Short: "Read every key under a prefix in parallel",
	Long: `Fan per-key reads out across a worker pool and gather the results.

One read task is created per concrete key under the prefix, in listing
order. By default tasks are submitted immediately and gathered; with
--lazy the same tasks are built as a deferred plan and submitted in a
second step, which yields identical results. With --plan the deferred
plan is printed as YAML and nothing executes.

A failed key never aborts its siblings: per-key errors are emitted as
JSONL error records and summarized at the end.

Examples:
  distread read s3://bucket/tmp/test/data
  distread read s3://bucket/logs/ --include '**/*.csv' --workers 16
  distread read s3://bucket/tmp/ --lazy --plan`,
	Args: cobra.ExactArgs(1),
	RunE: runRead,
}

var (
	readRegion    string
	readProfile   string
	readEndpoint  string
	readLazy      bool
	readPlan      bool
	readIncludes  []string
	readExcludes  []string
	readWorkers   int
	readQueue     int
	readRateLimit float64
)

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().StringVarP(&readRegion, "region", "r", "", "AWS region")
	readCmd.Flags().StringVarP(&readProfile, "profile", "p", "", "AWS profile")
	readCmd.Flags().StringVar(&readEndpoint, "endpoint", "", "Custom S3 endpoint")
	readCmd.Flags().BoolVar(&readLazy, "lazy", false, "Build a deferred plan, then submit and gather")
	readCmd.Flags().BoolVar(&readPlan, "plan", false, "Print the deferred task plan as YAML and exit (implies --lazy)")
	readCmd.Flags().StringArrayVar(&readIncludes, "include", nil, "Include glob pattern (repeatable)")
	readCmd.Flags().StringArrayVar(&readExcludes, "exclude", nil, "Exclude glob pattern (repeatable)")
	readCmd.Flags().IntVar(&readWorkers, "workers", 0, "Parallel read tasks (default from config)")
	readCmd.Flags().IntVar(&readQueue, "queue-depth", 0, "Submission queue depth (default from config)")
	readCmd.Flags().Float64Var(&readRateLimit, "rate-limit", -1, "Max task starts per second (0=unlimited)")
}

// planTask is the YAML shape of one deferred task in --plan output.
type planTask struct {
	ID     string `yaml:"id"`
	Kind   string `yaml:"kind"`
	Bucket string `yaml:"bucket"`
	Key    string `yaml:"key"`
}

func runRead(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	start := time.Now()

	parsed, err := ParseURI(args[0])
	if err != nil {
		observability.CLILogger.Error("Invalid URI", zap.String("uri", args[0]), zap.Error(err))
		return err
	}

	var matcher *match.Matcher
	if len(readIncludes) > 0 || len(readExcludes) > 0 {
		matcher, err = match.New(match.Config{Includes: readIncludes, Excludes: readExcludes})
		if err != nil {
			return err
		}
	}

	st, err := newStore(ctx, readRegion, readEndpoint, readProfile)
	if err != nil {
		observability.CLILogger.Error("Failed to create store", zap.Error(err))
		return err
	}
	defer func() { _ = st.Close() }()

	lazy := readLazy || readPlan

	if readPlan {
		tasks, err := fanout.BuildReadTasks(ctx, st, parsed.Bucket, parsed.Key, matcher)
		if err != nil {
			return err
		}
		plan := make([]planTask, len(tasks))
		for i, t := range tasks {
			plan[i] = planTask{ID: t.ID, Kind: t.Kind, Bucket: t.Bucket, Key: t.Key}
		}
		out, err := yaml.Marshal(plan)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(out)
		return err
	}

	execCfg := local.Config{
		Workers:    cfg.Read.Workers,
		QueueDepth: cfg.Read.QueueDepth,
		RateLimit:  cfg.Read.RateLimit,
		Logger:     observability.CLILogger,
	}
	if readWorkers > 0 {
		execCfg.Workers = readWorkers
	}
	if readQueue > 0 {
		execCfg.QueueDepth = readQueue
	}
	if readRateLimit >= 0 {
		execCfg.RateLimit = readRateLimit
	}

	exec := local.New(content.NewRunner(st), execCfg)
	defer func() { _ = exec.Close() }()

	mode := "eager"
	if lazy {
		mode = "lazy"
	}

	handles, err := fanout.ReadBytes(ctx, st, exec, parsed.Bucket, parsed.Key, fanout.Options{
		Lazy:    lazy,
		Matcher: matcher,
	})
	if err != nil {
		observability.CLILogger.Error("Fan-out failed",
			zap.String("bucket", parsed.Bucket),
			zap.String("prefix", parsed.Key),
			zap.Error(err),
		)
		return err
	}

	observability.CLILogger.Info("Read fan-out built",
		zap.String("bucket", parsed.Bucket),
		zap.String("prefix", parsed.Key),
		zap.String("mode", mode),
		zap.Int("tasks", len(handles)),
	)

	results, gatherErr := fanout.Gather(ctx, exec, handles)
	if gatherErr != nil {
		var batchErr *cluster.BatchError
		if !errors.As(gatherErr, &batchErr) {
			return gatherErr
		}
	}

	w := output.NewJSONLWriter(os.Stdout, uuid.New().String(), parsed.Backend)

	var bytesTotal, errCount int64
	for _, res := range results {
		if res.Err != nil {
			errCount++
			if err := w.WriteError(ctx, &output.ErrorRecord{
				Code:    errorCode(res.Err),
				Message: res.Err.Error(),
				Key:     res.Task.Key,
				Prefix:  parsed.Key,
			}); err != nil {
				return err
			}
			continue
		}
		bytesTotal += int64(len(res.Data))
		if err := w.WriteResult(ctx, &output.ResultRecord{
			Key:    res.Task.Key,
			TaskID: res.Task.ID,
			Bytes:  int64(len(res.Data)),
		}); err != nil {
			return err
		}
	}

	dur := time.Since(start)
	if err := w.WriteSummary(ctx, &output.SummaryRecord{
		KeysListed:    int64(len(handles)),
		TasksGathered: int64(len(results)),
		BytesTotal:    bytesTotal,
		Errors:        errCount,
		Mode:          mode,
		Duration:      dur,
		DurationHuman: dur.Round(time.Millisecond).String(),
	}); err != nil {
		return err
	}

	if errCount > 0 {
		return fmt.Errorf("read %s: %w", parsed.String(), gatherErr)
	}
	return nil
}

// errorCode maps store errors to machine-readable record codes.
func errorCode(err error) string {
	switch {
	case objstore.IsObjectNotFound(err):
		return output.ErrCodeObjectNotFound
	case objstore.IsBucketNotFound(err):
		return output.ErrCodeBucketNotFound
	case objstore.IsAccessDenied(err):
		return output.ErrCodeAccessDenied
	case objstore.IsTransient(err):
		return output.ErrCodeTransient
	default:
		return output.ErrCodeInternal
	}
}
