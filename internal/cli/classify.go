package cli

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tablequery/tqmend/internal/classify"
	"github.com/tablequery/tqmend/internal/dataset"
)

// Columns the classify command appends to each file.
const (
	questionTypeColumn = "question_type"
	skillsColumn       = "skills"
	answerTypeColumn   = "answer_type"
)

// ClassifyOptions holds flags for the classify command.
type ClassifyOptions struct {
	*RootOptions
	Suffix string
}

// ClassifyResult is the classify command's output payload.
type ClassifyResult struct {
	Files   int `json:"files"`
	Skipped int `json:"skipped"`
	Rows    int `json:"rows"`
}

func (r ClassifyResult) String() string {
	return fmt.Sprintf("✓ Classified %d row(s) in %d file(s), %d file(s) skipped",
		r.Rows, r.Files, r.Skipped)
}

// NewClassifyCommand creates the classify command.
func NewClassifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ClassifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "classify <input-dir> <output-dir>",
		Short: "Classify questions by reasoning type",
		Long: `Classify question/answer rows by structural question type
(Simple, Intersection, Composition), detected reasoning skills, and
inferred answer type.

Each output file mirrors its input with three extra columns:
question_type, skills (up to three, joined with ";"), and answer_type.
Files without the question and answer columns are skipped.

Example:
  tqmend classify ./qas ./question-reason-type`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Suffix, "suffix", "-type", "filename suffix for output files")

	return cmd
}

func runClassify(opts *ClassifyOptions, inputDir, outputDir string, cmd *cobra.Command) error {
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

	result := ClassifyResult{}
	for _, path := range paths {
		f, err := dataset.Read(path)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read input file", err)
		}

		qCol, qOK := f.Column(cfg.Columns.Question)
		aCol, aOK := f.Column(cfg.Columns.Answer)
		if !qOK || !aOK {
			slog.Warn("skipping file", "file", filepath.Base(path), "reason", "missing question/answer columns")
			result.Skipped++
			continue
		}

		typeCol := f.AddColumn(questionTypeColumn)
		skillCol := f.AddColumn(skillsColumn)
		ansCol := f.AddColumn(answerTypeColumn)

		for _, row := range f.Rows {
			res := classify.Classify(row[qCol], row[aCol])
			row[typeCol] = res.QuestionType
			row[skillCol] = strings.Join(res.Skills, ";")
			row[ansCol] = res.AnswerType
		}

		outPath := filepath.Join(outputDir, withSuffix(filepath.Base(path), opts.Suffix))
		if err := f.Write(outPath); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output file", err)
		}

		formatter.VerboseLog("classified %s: %d rows", filepath.Base(path), len(f.Rows))
		result.Files++
		result.Rows += len(f.Rows)
	}

	return formatter.Success(result)
}

// withSuffix inserts a suffix before a filename's extension:
// "train.csv" with "-type" becomes "train-type.csv".
func withSuffix(name, suffix string) string {
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + suffix + ext
}
