package endpoint

import (
	"fmt"
	"sort"
	"strings"
)

// Summary aggregates a whole run for the Markdown report written next
// to the output files.
type Summary struct {
	RunID      string
	Endpoint   string
	Files      int
	Counters   Counters
	ErrorTypes map[string]bool // distinct row annotations seen
}

// Markdown renders the run report: counts with percentages plus a table
// of distinct error types.
func (s Summary) Markdown() string {
	var b strings.Builder
	total := s.Counters.Total()

	b.WriteString("# SPARQL Query Run Summary\n\n")
	fmt.Fprintf(&b, "**Run ID:** %s\n\n", s.RunID)
	fmt.Fprintf(&b, "**Endpoint:** %s\n\n", s.Endpoint)
	fmt.Fprintf(&b, "**Files processed:** %d\n\n", s.Files)
	fmt.Fprintf(&b, "**Total rows processed:** %d\n\n", total)

	if total == 0 {
		b.WriteString("No rows processed.\n")
		return b.String()
	}

	pct := func(n int) float64 { return float64(n) / float64(total) * 100 }
	fmt.Fprintf(&b, "- **Non-empty results:** %d (%.2f%%)\n", s.Counters.NonEmpty, pct(s.Counters.NonEmpty))
	fmt.Fprintf(&b, "- **Empty results:** %d (%.2f%%)\n", s.Counters.Empty, pct(s.Counters.Empty))
	fmt.Fprintf(&b, "- **Errors:** %d (%.2f%%)\n", s.Counters.Errored, pct(s.Counters.Errored))
	if s.Counters.Cached > 0 {
		fmt.Fprintf(&b, "- **Served from cache:** %d (%.2f%%)\n", s.Counters.Cached, pct(s.Counters.Cached))
	}

	if len(s.ErrorTypes) > 0 {
		errs := make([]string, 0, len(s.ErrorTypes))
		for e := range s.ErrorTypes {
			errs = append(errs, e)
		}
		sort.Strings(errs)

		b.WriteString("\n## Distinct Error Types\n\n")
		b.WriteString("| # | Error Message |\n|---|---------------|\n")
		for i, e := range errs {
			fmt.Fprintf(&b, "| %d | %s |\n", i+1, strings.ReplaceAll(e, "|", "\\|"))
		}
	}
	return b.String()
}
