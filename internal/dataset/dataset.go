// Package dataset reads and writes the row-oriented CSV files the batch
// commands operate on. Files keep arbitrary extra columns; transformations
// touch one named column and pass everything else through unchanged,
// preserving row order.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is one loaded CSV file: a header row plus data rows. Rows shorter
// than the header are padded on read so column indexing is always safe.
type File struct {
	Header []string
	Rows   [][]string
}

// Read loads a CSV file. The first record is treated as the header.
func Read(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows may be ragged; pad below
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("read %s: empty file", path)
	}

	header := records[0]
	rows := records[1:]
	for i, row := range rows {
		for len(row) < len(header) {
			row = append(row, "")
		}
		rows[i] = row
	}
	return &File{Header: header, Rows: rows}, nil
}

// Write stores the file at path, creating parent directories as needed.
func (f *File) Write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	if err := w.Write(f.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range f.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}

// Column returns the index of a named column.
func (f *File) Column(name string) (int, bool) {
	for i, h := range f.Header {
		if strings.TrimSpace(h) == name {
			return i, true
		}
	}
	return 0, false
}

// AddColumn appends a column to the header and pads every row with an
// empty value, returning the new column's index. If the column already
// exists its index is returned unchanged.
func (f *File) AddColumn(name string) int {
	if idx, ok := f.Column(name); ok {
		return idx
	}
	f.Header = append(f.Header, name)
	for i := range f.Rows {
		f.Rows[i] = append(f.Rows[i], "")
	}
	return len(f.Header) - 1
}

// Apply rewrites one column in place through fn, returning how many cell
// values changed.
func (f *File) Apply(col int, fn func(string) string) int {
	changed := 0
	for _, row := range f.Rows {
		out := fn(row[col])
		if out != row[col] {
			row[col] = out
			changed++
		}
	}
	return changed
}

// ListCSV returns the sorted paths of all .csv files directly inside dir.
func ListCSV(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("input dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input dir %s: not a directory", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
