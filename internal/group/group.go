// Package group collapses question/answer rows that share a table into
// one row per table, and measures the resulting group-size distribution.
package group

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tablequery/tqmend/internal/dataset"
)

// QA is one question/answer pair inside a group.
type QA struct {
	Question string
	Answer   string
}

// Group is all QA pairs that reference the same table.
type Group struct {
	Table string
	Pairs []QA
}

// ByTable groups a file's rows by their table cell, preserving
// first-seen table order and within-group row order.
func ByTable(f *dataset.File, questionCol, answerCol, tableCol string) ([]Group, error) {
	qIdx, ok := f.Column(questionCol)
	if !ok {
		return nil, fmt.Errorf("missing column %s", questionCol)
	}
	aIdx, ok := f.Column(answerCol)
	if !ok {
		return nil, fmt.Errorf("missing column %s", answerCol)
	}
	tIdx, ok := f.Column(tableCol)
	if !ok {
		return nil, fmt.Errorf("missing column %s", tableCol)
	}

	index := make(map[string]int)
	var groups []Group
	for _, row := range f.Rows {
		table := row[tIdx]
		i, seen := index[table]
		if !seen {
			i = len(groups)
			index[table] = i
			groups = append(groups, Group{Table: table})
		}
		groups[i].Pairs = append(groups[i].Pairs, QA{Question: row[qIdx], Answer: row[aIdx]})
	}
	return groups, nil
}

// QAs renders the group's pairs as plain text: each question followed
// by its answer, all whitespace collapsed to single spaces.
func (g Group) QAs() string {
	var parts []string
	for _, qa := range g.Pairs {
		q := plain(qa.Question)
		a := plain(qa.Answer)
		if q != "" || a != "" {
			parts = append(parts, strings.TrimSpace(q+" "+a))
		}
	}
	return strings.Join(parts, " ")
}

// plain NFC-normalizes a string and collapses whitespace and newlines.
func plain(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// ToFile renders groups as a CSV file with columns num_pairs, table,
// qas, one row per table in group order.
func ToFile(groups []Group) *dataset.File {
	f := &dataset.File{Header: []string{"num_pairs", "table", "qas"}}
	for _, g := range groups {
		f.Rows = append(f.Rows, []string{strconv.Itoa(len(g.Pairs)), g.Table, g.QAs()})
	}
	return f
}

// Sizes returns the per-group pair counts, in group order.
func Sizes(groups []Group) []int {
	sizes := make([]int, len(groups))
	for i, g := range groups {
		sizes[i] = len(g.Pairs)
	}
	return sizes
}
