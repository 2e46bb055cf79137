package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tablequery/tqmend/internal/dataset"
	"github.com/tablequery/tqmend/internal/group"
)

// statsFilename is the aggregate statistics file written alongside the
// grouped output files.
const statsFilename = "statistics.csv"

// GroupOptions holds flags for the group command.
type GroupOptions struct {
	*RootOptions
	Suffix string
}

// GroupResult is the group command's output payload.
type GroupResult struct {
	Files   int    `json:"files"`
	Skipped int    `json:"skipped"`
	Tables  int    `json:"tables"`
	Pairs   int    `json:"pairs"`
	Stats   string `json:"stats"`
}

func (r GroupResult) String() string {
	return fmt.Sprintf("✓ Grouped %d QA pair(s) into %d table(s) across %d file(s), %d skipped; stats: %s",
		r.Pairs, r.Tables, r.Files, r.Skipped, r.Stats)
}

// NewGroupCommand creates the group command.
func NewGroupCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GroupOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "group <input-dir> <output-dir>",
		Short: "Group QA pairs by their table",
		Long: `Group question/answer rows that reference the same table.

Each output file has one row per table with columns num_pairs, table,
and qas (the questions and answers as collapsed plain text). A
statistics.csv with per-file and overall group-size statistics is
written alongside.

Example:
  tqmend group ./tqas ./gtqa`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGroup(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Suffix, "suffix", ".gtqa", "filename suffix for grouped files")

	return cmd
}

func runGroup(opts *GroupOptions, inputDir, outputDir string, cmd *cobra.Command) error {
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

	paths, err := dataset.ListCSV(inputDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to scan input dir", err)
	}
	if len(paths) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no CSV files found in %s", inputDir))
	}

	result := GroupResult{Stats: filepath.Join(outputDir, statsFilename)}
	var perFile []group.FileStats
	var allSizes []int

	for _, path := range paths {
		f, err := dataset.Read(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read input file", err)
		}

		groups, err := group.ByTable(f, cfg.Columns.Question, cfg.Columns.Answer, cfg.Columns.Table)
		if err != nil {
			slog.Warn("skipping file", "file", filepath.Base(path), "reason", err)
			result.Skipped++
			continue
		}

		outPath := filepath.Join(outputDir, withSuffix(filepath.Base(path), opts.Suffix))
		if err := group.ToFile(groups).Write(outPath); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output file", err)
		}

		sizes := group.Sizes(groups)
		stats := group.Measure(sizes)
		perFile = append(perFile, group.FileStats{Filename: filepath.Base(path), Stats: stats})
		allSizes = append(allSizes, sizes...)

		formatter.VerboseLog("grouped %s: %d tables, %d pairs", filepath.Base(path), stats.NumTables, stats.TotalQAs)
		result.Files++
		result.Tables += stats.NumTables
		result.Pairs += stats.TotalQAs
	}

	if err := group.StatsFile(perFile, allSizes).Write(result.Stats); err != nil {
		return WrapExitError(ExitCommandError, "failed to write statistics", err)
	}

	return formatter.Success(result)
}
