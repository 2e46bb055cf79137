package repair

import (
	"regexp"
	"strings"
)

// blockKeywords open sub-patterns with their own internal grammar. Clauses
// beginning with one of these must not be triple-split.
var blockKeywords = []string{
	"FILTER", "OPTIONAL", "VALUES", "BIND", "MINUS", "SERVICE", "GRAPH", "UNION",
}

var (
	numericTokenRx = regexp.MustCompile(`^\d+(\.\d+)?$`)
	duplicateDotRx = regexp.MustCompile(`\.\s*\.`)
)

// splitClauses splits a WHERE body into clauses on '.' characters at
// nesting depth zero. Depth increases on '{', '(' and '[' and decreases on
// '}', ')' and ']', floored at zero so unbalanced closers never go
// negative.
func splitClauses(body string) []string {
	var out []string
	var buf strings.Builder
	depth := 0
	for _, ch := range body {
		switch ch {
		case '{', '(', '[':
			depth++
		case '}', ')', ']':
			if depth > 0 {
				depth--
			}
		}
		if ch == '.' && depth == 0 {
			if clause := strings.TrimSpace(buf.String()); clause != "" {
				out = append(out, clause)
			}
			buf.Reset()
			continue
		}
		buf.WriteRune(ch)
	}
	if clause := strings.TrimSpace(buf.String()); clause != "" {
		out = append(out, clause)
	}
	return out
}

// isBlockClause reports whether a clause's first token opens a block
// keyword sub-pattern (possibly fused to its opening paren, as in
// "FILTER(...)").
func isBlockClause(first string) bool {
	upper := strings.ToUpper(first)
	for _, kw := range blockKeywords {
		if strings.HasPrefix(upper, kw) {
			return true
		}
	}
	return false
}

// looksLikeSubject reports whether a token can open a triple pattern: a
// variable, an IRI, or a CURIE. Any token containing ':' not at position
// zero is accepted as CURIE-like; prefixes are deliberately not validated
// against a declared set.
func looksLikeSubject(tok string) bool {
	if strings.HasPrefix(tok, "?") || strings.HasPrefix(tok, "<") {
		return true
	}
	return strings.Contains(tok, ":") && !strings.HasPrefix(tok, ":")
}

// repairWhereBody splits the WHERE body into clauses, repairs each, and
// rejoins the survivors.
func (r *repairer) repairWhereBody(body string) string {
	var repaired []string
	for _, clause := range splitClauses(body) {
		repaired = append(repaired, r.repairClause(clause)...)
	}
	out := strings.Join(repaired, " . ")
	out = duplicateDotRx.ReplaceAllString(out, ".")
	return strings.TrimSpace(out)
}

// repairClause repairs a single clause, returning zero, one, or two
// rewritten clauses. Dropping a clause (empty result) is the rejection
// path for clauses that cannot open a triple pattern.
func (r *repairer) repairClause(clause string) []string {
	clause = strings.TrimSpace(clause)
	if clause == "" || clause == "." {
		return nil
	}
	tokens := strings.Fields(clause)

	// Block keyword sub-patterns pass through untouched.
	if isBlockClause(tokens[0]) {
		return []string{strings.Join(tokens, " ")}
	}
	if !looksLikeSubject(tokens[0]) {
		return nil
	}

	switch {
	case len(tokens) == 2:
		// Subject and predicate with the object missing.
		return []string{tokens[0] + " " + tokens[1] + " " + r.fresh()}

	case len(tokens) == 4:
		// Stacked predicates: S P1 P2 O becomes two triples joined
		// through a fresh intermediate variable.
		mid := r.fresh()
		return []string{
			tokens[0] + " " + tokens[1] + " " + mid,
			mid + " " + tokens[2] + " " + tokens[3],
		}

	case len(tokens) >= 3 && numericTokenRx.MatchString(tokens[1]):
		// A bare number in predicate position is noise; drop it and
		// re-attempt.
		tokens = append(tokens[:1], tokens[2:]...)
		if len(tokens) >= 3 {
			return []string{strings.Join(tokens[:3], " ")}
		}
		return []string{tokens[0] + " " + tokens[1] + " " + r.fresh()}
	}

	return []string{strings.Join(tokens, " ")}
}
