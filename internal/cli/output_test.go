package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExitErrorMessage(t *testing.T) {
	err := NewExitError(ExitFailure, "run interrupted")
	assert.Equal(t, "run interrupted", err.Error())
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestWrapExitErrorUnwraps(t *testing.T) {
	underlying := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "failed to write output file", underlying)

	assert.Equal(t, "failed to write output file: disk full", err.Error())
	assert.ErrorIs(t, err, underlying)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCodeDefaultsToFailure(t *testing.T) {
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain error")))
}

func TestGetExitCodeFindsWrappedExitError(t *testing.T) {
	err := fmt.Errorf("outer: %w", NewExitError(ExitCommandError, "inner"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestFormatterSuccessJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Success(MendResult{Files: 2, Rows: 10, RowsChanged: 7}))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["files"])
	assert.Equal(t, float64(7), data["rows_changed"])
}

func TestFormatterSuccessText(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, f.Success(MendResult{Files: 1, Rows: 4, RowsChanged: 3}))
	assert.Contains(t, buf.String(), "✓ Repaired 1 file(s)")
}

func TestFormatterErrorJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, f.Error("E001", "bad input", nil))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
}

func TestVerboseLogGoesToErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	f.VerboseLog("processed %d rows", 5)
	assert.Empty(t, out.String())
	assert.Equal(t, "processed 5 rows\n", errOut.String())
}

func TestVerboseLogSuppressedWhenQuiet(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf, Verbose: false}

	f.VerboseLog("hidden")
	assert.Empty(t, buf.String())
}
