package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tablequery/tqmend/internal/dataset"
	"github.com/tablequery/tqmend/internal/repair"
)

// MendOptions holds flags for the mend command.
type MendOptions struct {
	*RootOptions
	Column string
}

// MendResult is the mend command's output payload.
type MendResult struct {
	Files       int `json:"files"`
	Skipped     int `json:"skipped"`
	Rows        int `json:"rows"`
	RowsChanged int `json:"rows_changed"`
}

func (r MendResult) String() string {
	return fmt.Sprintf("✓ Repaired %d file(s): %d/%d row(s) changed, %d file(s) skipped",
		r.Files, r.RowsChanged, r.Rows, r.Skipped)
}

// NewMendCommand creates the mend command.
func NewMendCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MendOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "mend <input-dir> <output-dir>",
		Short: "Repair the SPARQL column of CSV files",
		Long: `Repair model-generated SPARQL queries in CSV files.

Every CSV in the input directory is rewritten to the output directory
under the same filename, with the query column passed through the
repair pipeline and all other columns preserved. Files without the
query column are skipped.

Example:
  tqmend mend ./raw ./post
  tqmend mend --column query ./raw ./post`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMend(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Column, "column", "", "query column name (default from config)")

	return cmd
}

func runMend(opts *MendOptions, inputDir, outputDir string, cmd *cobra.Command) error {
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
	column := opts.Column
	if column == "" {
		column = cfg.Columns.SPARQL
	}

	paths, err := dataset.ListCSV(inputDir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to scan input dir", err)
	}
	if len(paths) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("no CSV files found in %s", inputDir))
	}

	result := MendResult{}
	for _, path := range paths {
		f, err := dataset.Read(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read input file", err)
		}

		col, ok := f.Column(column)
		if !ok {
			slog.Warn("skipping file", "file", filepath.Base(path), "reason", "missing column "+column)
			result.Skipped++
			continue
		}

		changed := f.Apply(col, repair.Repair)
		outPath := filepath.Join(outputDir, filepath.Base(path))
		if err := f.Write(outPath); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output file", err)
		}

		formatter.VerboseLog("repaired %s: %d/%d rows changed", filepath.Base(path), changed, len(f.Rows))
		result.Files++
		result.Rows += len(f.Rows)
		result.RowsChanged += changed
	}

	return formatter.Success(result)
}
