package endpoint

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/tablequery/tqmend/internal/dataset"
	"github.com/tablequery/tqmend/internal/store"
)

// Row outcome columns appended to each processed file.
const (
	ValuesColumn = "obj_values"
	ErrorColumn  = "error"
)

// emptyMarker is the cell value for a query that succeeded but bound
// nothing, distinguishing it from an unexecuted or failed row.
const emptyMarker = "empty"

// Counters tallies row outcomes across a run.
type Counters struct {
	NonEmpty int // ≥1 binding value
	Empty    int // executed, no bindings
	Errored  int // annotated with an error
	Cached   int // served from the cache, counted above as well
}

// Total returns the number of rows processed.
func (c Counters) Total() int {
	return c.NonEmpty + c.Empty + c.Errored
}

// Batch executes the query column of CSV files row by row, annotating
// each row with its outcome. A nil Cache disables caching.
type Batch struct {
	Client *Client
	Cache  *store.Store
	RunID  string
	Column string
	Pause  time.Duration
	Log    *slog.Logger
}

// ProcessFile runs every query in f's query column and writes the
// outcome into the obj_values and error columns, preserving all other
// columns and row order. Row failures are recorded, never returned; the
// error return covers cache faults only.
func (b *Batch) ProcessFile(ctx context.Context, f *dataset.File, counters *Counters, errorTypes map[string]bool) error {
	queryCol, ok := f.Column(b.Column)
	if !ok {
		// Callers decide whether a missing column skips the file.
		return &MissingColumnError{Column: b.Column}
	}
	valuesCol := f.AddColumn(ValuesColumn)
	errCol := f.AddColumn(ErrorColumn)

	log := b.Log
	if log == nil {
		log = slog.Default()
	}

	for i, row := range f.Rows {
		if err := ctx.Err(); err != nil {
			return err
		}

		values, errMsg, cached, err := b.runRow(ctx, row[queryCol])
		if err != nil {
			return err
		}
		if cached {
			counters.Cached++
		}

		switch {
		case errMsg != "":
			row[valuesCol] = ""
			row[errCol] = errMsg
			counters.Errored++
			errorTypes[errMsg] = true
			log.Debug("query failed", "row", i, "error", errMsg)
		case values == "" || values == emptyMarker:
			row[valuesCol] = emptyMarker
			row[errCol] = ""
			counters.Empty++
		default:
			row[valuesCol] = values
			row[errCol] = ""
			counters.NonEmpty++
		}

		// Courtesy pause between live requests; cached rows cost the
		// endpoint nothing.
		if !cached && b.Pause > 0 && i < len(f.Rows)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(b.Pause):
			}
		}
	}
	return nil
}

// runRow resolves one query through the cache or the endpoint. values
// is the ";"-joined cell value ("" means no bindings).
func (b *Batch) runRow(ctx context.Context, query string) (values, errMsg string, cached bool, err error) {
	var hash string
	if b.Cache != nil {
		hash = store.Hash(query)
		if res, ok, gerr := b.Cache.Get(ctx, hash); gerr != nil {
			return "", "", false, gerr
		} else if ok {
			return res.Values, res.Error, true, nil
		}
	}

	vals, runErr := b.Client.Run(ctx, query)
	if runErr == "" {
		values = strings.Join(vals, ";")
		if values == "" {
			values = emptyMarker
		}
	} else {
		errMsg = runErr
	}

	if b.Cache != nil {
		if perr := b.Cache.Put(ctx, store.Result{
			QueryHash: hash,
			RunID:     b.RunID,
			Values:    values,
			Error:     errMsg,
		}); perr != nil {
			return "", "", false, perr
		}
	}
	return values, errMsg, false, nil
}

// MissingColumnError reports a file without the configured query column.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return "missing column " + e.Column
}
