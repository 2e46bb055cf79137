package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, path string, rows ...[]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(rows))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func TestMendRepairsSPARQLColumn(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeCSV(t, filepath.Join(inDir, "queries.csv"),
		[]string{"question", "sparql"},
		[]string{"who", "SELECT ?x WHERE [?x wdt:P106 wd:Q5]"},
		[]string{"already fine", "SELECT ?x WHERE { ?x a dbo:Person }"},
	)

	buf := &bytes.Buffer{}
	cmd := NewMendCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{inDir, outDir})
	require.NoError(t, cmd.Execute())

	rows := readCSV(t, filepath.Join(outDir, "queries.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"question", "sparql"}, rows[0])
	assert.Equal(t, "SELECT ?x WHERE { ?x dbo:P106 dbr:Q5 }", rows[1][1])
	assert.Equal(t, "who", rows[1][0])
	assert.Contains(t, buf.String(), "✓ Repaired 1 file(s)")
}

func TestMendSkipsFilesWithoutColumn(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeCSV(t, filepath.Join(inDir, "other.csv"),
		[]string{"question"},
		[]string{"who"},
	)
	writeCSV(t, filepath.Join(inDir, "queries.csv"),
		[]string{"sparql"},
		[]string{"ASK { ?x a dbo:City }"},
	)

	buf := &bytes.Buffer{}
	cmd := NewMendCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{inDir, outDir})
	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["files"])
	assert.Equal(t, float64(1), data["skipped"])

	_, err := os.Stat(filepath.Join(outDir, "other.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestMendCustomColumn(t *testing.T) {
	inDir := t.TempDir()
	outDir := t.TempDir()
	writeCSV(t, filepath.Join(inDir, "q.csv"),
		[]string{"query"},
		[]string{"select ?x where [ ?x a dbo:Person ]"},
	)

	cmd := NewMendCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--column", "query", inDir, outDir})
	require.NoError(t, cmd.Execute())

	rows := readCSV(t, filepath.Join(outDir, "q.csv"))
	assert.True(t, strings.HasPrefix(rows[1][0], "SELECT ?x where {"))
}

func TestMendEmptyInputDir(t *testing.T) {
	cmd := NewMendCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{t.TempDir(), t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMendMissingInputDir(t *testing.T) {
	cmd := NewMendCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "nope"), t.TempDir()})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
