package endpoint

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tablequery/tqmend/internal/dataset"
	"github.com/tablequery/tqmend/internal/store"
)

func testFile(queries ...string) *dataset.File {
	f := &dataset.File{Header: []string{"question", "sparql"}}
	for i, q := range queries {
		f.Rows = append(f.Rows, []string{fmt.Sprintf("q%d", i+1), q})
	}
	return f
}

func TestProcessFileAnnotatesRows(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		switch {
		case q == "good":
			fmt.Fprint(w, resultsJSON("A", "B"))
		case q == "none":
			fmt.Fprint(w, resultsJSON())
		default:
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "parse error")
		}
	})

	f := testFile("good", "none", "bad")
	b := &Batch{Client: c, RunID: "run-1", Column: "sparql"}
	counters := Counters{}
	errorTypes := map[string]bool{}

	require.NoError(t, b.ProcessFile(context.Background(), f, &counters, errorTypes))

	assert.Equal(t, []string{"question", "sparql", ValuesColumn, ErrorColumn}, f.Header)
	assert.Equal(t, []string{"q1", "good", "A;B", ""}, f.Rows[0])
	assert.Equal(t, []string{"q2", "none", "empty", ""}, f.Rows[1])
	assert.Equal(t, "q3", f.Rows[2][0])
	assert.Empty(t, f.Rows[2][2])
	assert.Contains(t, f.Rows[2][3], "HTTP 400")

	assert.Equal(t, Counters{NonEmpty: 1, Empty: 1, Errored: 1}, counters)
	assert.Len(t, errorTypes, 1)
}

func TestProcessFileMissingColumn(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	f := &dataset.File{Header: []string{"question"}, Rows: [][]string{{"q1"}}}
	b := &Batch{Client: c, Column: "sparql"}

	err := b.ProcessFile(context.Background(), f, &Counters{}, map[string]bool{})
	var missing *MissingColumnError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "sparql", missing.Column)
}

func TestProcessFileUsesCache(t *testing.T) {
	requests := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, resultsJSON("cached-value"))
	})

	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	b := &Batch{Client: c, Cache: cache, RunID: "run-1", Column: "sparql"}

	// Same query twice in one file plus a whole second pass: only the
	// first occurrence may hit the endpoint.
	for pass := 0; pass < 2; pass++ {
		f := testFile("SELECT ?obj", "SELECT ?obj")
		counters := Counters{}
		require.NoError(t, b.ProcessFile(context.Background(), f, &counters, map[string]bool{}))
		assert.Equal(t, "cached-value", f.Rows[0][2])
		assert.Equal(t, "cached-value", f.Rows[1][2])
	}
	assert.Equal(t, 1, requests)
}

func TestProcessFileCachesFailures(t *testing.T) {
	requests := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "SP030")
	})

	cache, err := store.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer cache.Close()

	b := &Batch{Client: c, Cache: cache, RunID: "run-1", Column: "sparql"}

	for pass := 0; pass < 2; pass++ {
		f := testFile("broken")
		counters := Counters{}
		errorTypes := map[string]bool{}
		require.NoError(t, b.ProcessFile(context.Background(), f, &counters, errorTypes))
		assert.Equal(t, 1, counters.Errored)
		assert.Contains(t, f.Rows[0][3], "SP030")
	}
	assert.Equal(t, 1, requests)
}

func TestProcessFileStopsOnCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, resultsJSON("v"))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &Batch{Client: c, Column: "sparql", Pause: time.Millisecond}
	err := b.ProcessFile(ctx, testFile("a", "b"), &Counters{}, map[string]bool{})
	require.ErrorIs(t, err, context.Canceled)
}
