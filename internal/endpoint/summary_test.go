package endpoint

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryMarkdown(t *testing.T) {
	s := Summary{
		RunID:    "9b2e4f6a-0000-0000-0000-000000000000",
		Endpoint: "https://dbpedia.org/sparql",
		Files:    2,
		Counters: Counters{NonEmpty: 6, Empty: 3, Errored: 1},
		ErrorTypes: map[string]bool{
			"HTTP 400: Virtuoso SP030": true,
		},
	}

	md := s.Markdown()
	assert.Contains(t, md, "# SPARQL Query Run Summary")
	assert.Contains(t, md, "**Run ID:** 9b2e4f6a")
	assert.Contains(t, md, "**Total rows processed:** 10")
	assert.Contains(t, md, "**Non-empty results:** 6 (60.00%)")
	assert.Contains(t, md, "**Empty results:** 3 (30.00%)")
	assert.Contains(t, md, "**Errors:** 1 (10.00%)")
	assert.Contains(t, md, "## Distinct Error Types")
	assert.Contains(t, md, "| 1 | HTTP 400: Virtuoso SP030 |")
}

func TestSummaryMarkdownNoRows(t *testing.T) {
	md := Summary{RunID: "r", Endpoint: "e"}.Markdown()
	assert.Contains(t, md, "No rows processed.")
	assert.NotContains(t, md, "Distinct Error Types")
}

func TestSummaryMarkdownEscapesPipes(t *testing.T) {
	s := Summary{
		RunID:      "r",
		Endpoint:   "e",
		Counters:   Counters{Errored: 1},
		ErrorTypes: map[string]bool{"HTTP 500: a | b": true},
	}
	assert.Contains(t, s.Markdown(), `a \| b`)
}

func TestSummaryMarkdownErrorsSorted(t *testing.T) {
	s := Summary{
		RunID:    "r",
		Endpoint: "e",
		Counters: Counters{Errored: 2},
		ErrorTypes: map[string]bool{
			"HTTP 503: busy":  true,
			"HTTP 400: parse": true,
		},
	}
	md := s.Markdown()
	assert.Less(t, strings.Index(md, "HTTP 400"), strings.Index(md, "HTTP 503"))
}
