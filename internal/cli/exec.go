package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tablequery/tqmend/internal/dataset"
	"github.com/tablequery/tqmend/internal/endpoint"
	"github.com/tablequery/tqmend/internal/store"
)

// ExecOptions holds flags for the exec command.
type ExecOptions struct {
	*RootOptions
	Endpoint  string
	CachePath string
	Summary   string
	NoCache   bool
}

// ExecResult is the exec command's output payload.
type ExecResult struct {
	RunID    string `json:"run_id"`
	Files    int    `json:"files"`
	Skipped  int    `json:"skipped"`
	Rows     int    `json:"rows"`
	NonEmpty int    `json:"non_empty"`
	Empty    int    `json:"empty"`
	Errored  int    `json:"errored"`
	Cached   int    `json:"cached"`
	Summary  string `json:"summary"`
}

func (r ExecResult) String() string {
	return fmt.Sprintf("✓ Run %s: %d file(s), %d row(s): %d non-empty, %d empty, %d errored (%d cached); summary: %s",
		r.RunID, r.Files, r.Rows, r.NonEmpty, r.Empty, r.Errored, r.Cached, r.Summary)
}

// NewExecCommand creates the exec command.
func NewExecCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExecOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "exec <input-dir> <output-dir>",
		Short: "Execute repaired SPARQL against an endpoint",
		Long: `Execute every query in the input CSVs against a SPARQL endpoint.

Each output file mirrors its input with two extra columns: obj_values
(deduplicated ?obj bindings joined with ";", or "empty") and error (the
failure annotation for rows whose query did not execute). Row failures
never abort the batch. A Markdown run summary is written next to the
output files.

Outcomes are cached in SQLite keyed by query hash, so re-runs skip
queries that were already executed.

Example:
  tqmend exec ./post ./db-results
  tqmend exec --endpoint http://localhost:8890/sparql --no-cache ./post ./db-results`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Endpoint, "endpoint", "", "SPARQL endpoint URL (default from config)")
	cmd.Flags().StringVar(&opts.CachePath, "cache", "", "path to SQLite result cache (default from config)")
	cmd.Flags().StringVar(&opts.Summary, "summary", "", "path for the Markdown run summary (default <output-dir>/summary.md)")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "disable the result cache")

	return cmd
}

func runExec(opts *ExecOptions, inputDir, outputDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	endpointURL := opts.Endpoint
	if endpointURL == "" {
		endpointURL = cfg.Endpoint
	}
	summaryPath := opts.Summary
	if summaryPath == "" {
		summaryPath = filepath.Join(outputDir, "summary.md")
	}

	paths, err := dataset.ListCSV(inputDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to scan input dir", err)
	}
	if len(paths) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no CSV files found in %s", inputDir))
	}

	var cache *store.Store
	if !opts.NoCache {
		cachePath := opts.CachePath
		if cachePath == "" {
			cachePath = cfg.CachePath
		}
		if cachePath != "" {
			cache, err = store.Open(cachePath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open result cache", err)
			}
			defer func() {
				if closeErr := cache.Close(); closeErr != nil {
					slog.Error("error closing cache", "error", closeErr)
				}
			}()
		}
	}

	// Setup signal handling so an interrupted run still keeps the rows
	// it already executed in the cache.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, stopping run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	runID := uuid.NewString()
	batch := &endpoint.Batch{
		Client: endpoint.New(endpointURL, cfg.Timeout(),
			endpoint.WithRetries(cfg.Retries),
			endpoint.WithBackoff(cfg.Backoff())),
		Cache:  cache,
		RunID:  runID,
		Column: cfg.Columns.SPARQL,
		Pause:  cfg.Pause(),
		Log:    slog.Default(),
	}

	slog.Info("starting run", "run_id", runID, "endpoint", endpointURL, "files", len(paths))

	result := ExecResult{RunID: runID, Summary: summaryPath}
	counters := endpoint.Counters{}
	errorTypes := map[string]bool{}

	for _, path := range paths {
		f, err := dataset.Read(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read input file", err)
		}

		err = batch.ProcessFile(ctx, f, &counters, errorTypes)
		var missing *endpoint.MissingColumnError
		switch {
		case errors.As(err, &missing):
			slog.Warn("skipping file", "file", filepath.Base(path), "reason", err)
			result.Skipped++
			continue
		case errors.Is(err, context.Canceled):
			return NewExitError(ExitFailure, "run interrupted")
		case err != nil:
			return WrapExitError(ExitCommandError, "failed to process file", err)
		}

		outPath := filepath.Join(outputDir, filepath.Base(path))
		if err := f.Write(outPath); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output file", err)
		}

		formatter.VerboseLog("executed %s: %d rows", filepath.Base(path), len(f.Rows))
		result.Files++
		result.Rows += len(f.Rows)
	}

	summary := endpoint.Summary{
		RunID:      runID,
		Endpoint:   endpointURL,
		Files:      result.Files,
		Counters:   counters,
		ErrorTypes: errorTypes,
	}
	if err := os.MkdirAll(filepath.Dir(summaryPath), 0o755); err != nil {
		return WrapExitError(ExitCommandError, "failed to create summary dir", err)
	}
	if err := os.WriteFile(summaryPath, []byte(summary.Markdown()), 0o644); err != nil {
		return WrapExitError(ExitCommandError, "failed to write summary", err)
	}

	result.NonEmpty = counters.NonEmpty
	result.Empty = counters.Empty
	result.Errored = counters.Errored
	result.Cached = counters.Cached

	return formatter.Success(result)
}
