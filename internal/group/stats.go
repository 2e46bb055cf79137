package group

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/tablequery/tqmend/internal/dataset"
)

// Stats describes a group-size distribution. Stdev is the population
// standard deviation, matching how the research scripts report spread.
type Stats struct {
	NumTables int
	TotalQAs  int
	Mean      float64
	Median    float64
	Stdev     float64
}

// Measure computes distribution statistics over group sizes. An empty
// input yields all-zero stats.
func Measure(sizes []int) Stats {
	if len(sizes) == 0 {
		return Stats{}
	}

	total := 0
	for _, n := range sizes {
		total += n
	}
	mean := float64(total) / float64(len(sizes))

	variance := 0.0
	for _, n := range sizes {
		d := float64(n) - mean
		variance += d * d
	}
	variance /= float64(len(sizes))

	sorted := append([]int(nil), sizes...)
	sort.Ints(sorted)
	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = float64(sorted[mid])
	} else {
		median = float64(sorted[mid-1]+sorted[mid]) / 2
	}

	return Stats{
		NumTables: len(sizes),
		TotalQAs:  total,
		Mean:      mean,
		Median:    median,
		Stdev:     math.Sqrt(variance),
	}
}

// FileStats is one statistics row: the stats of one input file, or the
// ALL row aggregated over every group of every file.
type FileStats struct {
	Filename string
	Stats
}

// StatsFile renders per-file statistics plus a trailing ALL row
// computed over the concatenated group sizes of all files.
func StatsFile(perFile []FileStats, allSizes []int) *dataset.File {
	f := &dataset.File{
		Header: []string{"filename", "num_tables", "total_qas", "mean", "median", "stdev"},
	}
	for _, row := range perFile {
		f.Rows = append(f.Rows, statsRow(row.Filename, row.Stats))
	}
	f.Rows = append(f.Rows, statsRow("ALL", Measure(allSizes)))
	return f
}

func statsRow(name string, s Stats) []string {
	return []string{
		name,
		strconv.Itoa(s.NumTables),
		strconv.Itoa(s.TotalQAs),
		fmt.Sprintf("%.6f", s.Mean),
		fmt.Sprintf("%.6f", s.Median),
		fmt.Sprintf("%.6f", s.Stdev),
	}
}
