package repair

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// bracketBlockRx matches a non-greedy [...] span, including newlines.
	bracketBlockRx = regexp.MustCompile(`(?s)\[(.*?)\]`)

	// curieRx matches a prefix:localpart token. The local part class mirrors
	// the SPARQL token terminators; a second ':' or space inside it makes
	// the CURIE grammatically invalid.
	curieRx = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_-]*):([^\s.,;)}{]+)`)

	wdtPrefixRx = regexp.MustCompile(`\bwdt:`)
	psPrefixRx  = regexp.MustCompile(`\bps:`)
	pPrefixRx   = regexp.MustCompile(`\bp:`)
	wdPrefixRx  = regexp.MustCompile(`\bwd:`)

	unterminatedQuoteRx = regexp.MustCompile(`'([^']*)\n`)
	clockTokenRx        = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
	containsCallRx      = regexp.MustCompile(`(?i)\bCONTAINS\s*\(([^()]*)\)`)
	bareAsRx            = regexp.MustCompile(`(?i)(^|\s)AS\s+([A-Za-z_][A-Za-z0-9_]*)`)

	whereBodyRx = regexp.MustCompile(`(?is)where\s*\{(.*)\}`)
	braceBodyRx = regexp.MustCompile(`(?s)\{(.*)\}`)

	whitespaceRx = regexp.MustCompile(`\s+`)
	selectKwRx   = regexp.MustCompile(`(?i)\bselect\b`)
	askKwRx      = regexp.MustCompile(`(?i)\bask\b`)
	orderByKwRx  = regexp.MustCompile(`(?i)\border\s+by\b`)
	limitKwRx    = regexp.MustCompile(`(?i)\blimit\b`)
	openBraceRx  = regexp.MustCompile(`\s*\{\s*`)
	closeBraceRx = regexp.MustCompile(`\s*\}\s*`)
	orderDescRx  = regexp.MustCompile(`ORDER BY\s*DESC\s*\(`)
	closeLimitRx = regexp.MustCompile(`(?i)\)\s*limit`)
)

// repairer holds the per-invocation fresh-variable counter. A new repairer
// is created for every Repair call; the counter is never shared.
type repairer struct {
	vcounter int
}

// fresh returns the next synthetic variable (?v1, ?v2, ...).
func (r *repairer) fresh() string {
	r.vcounter++
	return fmt.Sprintf("?v%d", r.vcounter)
}

// Repair transforms a malformed SPARQL candidate into a more likely-valid
// query through a fixed, ordered pipeline of text transformations:
//
//  1. Bracket normalization ([...] → {...})
//  2. Prefix remapping (wdt:/p:/ps: → dbo:, wd: → dbr:)
//  3. CURIE sanitization (':' in local parts → '_')
//  4. Bad-token and quote cleanup
//  5. WHERE-body extraction
//  6. Clause-level structural repair of the WHERE body
//  7. Keyword and whitespace normalization
//  8. Brace and paren rebalancing
//
// Repair is total: it never fails and always returns a string. "Repaired"
// means the passes were applied, not that the result is guaranteed to
// parse; downstream execution is the validity oracle.
func Repair(query string) string {
	r := &repairer{}

	q := normalizeBrackets(query)
	q = remapPrefixes(q)
	q = sanitizeCURIEs(q)
	q = cleanBadTokens(q)

	if head, body, tail, ok := extractWhereBody(q); ok {
		q = head + r.repairWhereBody(body) + tail
	}

	q = normalizeText(q)
	q = rebalance(q, '{', '}', " }")
	q = rebalance(q, '(', ')', ")")
	return strings.TrimSpace(q)
}

// normalizeBrackets converts bracket-delimited graph patterns to braces.
// Matched [...] spans are rewritten first; any stray brackets left over
// (unmatched openers or closers) are converted one-for-one as a fallback.
func normalizeBrackets(q string) string {
	q = bracketBlockRx.ReplaceAllString(q, `{${1}}`)
	q = strings.ReplaceAll(q, "[", "{")
	q = strings.ReplaceAll(q, "]", "}")
	return q
}

// remapPrefixes rewrites undefined Wikidata-style prefixes to DBpedia ones.
// Property-position prefixes map to dbo:, the entity prefix to dbr:. No
// PREFIX declarations are inserted; the terms are remapped structurally,
// not resolved semantically.
func remapPrefixes(q string) string {
	q = wdtPrefixRx.ReplaceAllString(q, "dbo:")
	q = psPrefixRx.ReplaceAllString(q, "dbo:")
	q = pPrefixRx.ReplaceAllString(q, "dbo:")
	q = wdPrefixRx.ReplaceAllString(q, "dbr:")
	return q
}

// sanitizeCURIEs replaces ':' and spaces inside CURIE local parts with '_'.
func sanitizeCURIEs(q string) string {
	return curieRx.ReplaceAllStringFunc(q, func(m string) string {
		sub := curieRx.FindStringSubmatch(m)
		local := strings.ReplaceAll(sub[2], ":", "_")
		local = strings.ReplaceAll(local, " ", "_")
		return sub[1] + ":" + local
	})
}

// cleanBadTokens strips characters that are illegal outside specific
// grammar positions and repairs a handful of common token-level mistakes.
func cleanBadTokens(q string) string {
	// Ampersands are never legal in this position.
	q = strings.ReplaceAll(q, "&", " ")

	q = dropStrayClosers(q)

	// Unterminated quote at end of line, then strip single quotes wholesale.
	// The pipeline does not attempt to preserve '-quoted literals.
	q = unterminatedQuoteRx.ReplaceAllString(q, "${1} ")
	q = strings.ReplaceAll(q, "'", "")

	// Clock-like HH:MM tokens parse as two integers around a colon unless
	// quoted.
	q = quoteClockTokens(q)

	q = truncateContains(q)

	// SPARQL requires the target of AS to be a variable.
	q = bareAsRx.ReplaceAllString(q, "${1}AS ?${2}")
	return q
}

// quoteClockTokens wraps HH:MM tokens in double quotes, leaving tokens
// that are already quoted alone so a second pass is a no-op.
func quoteClockTokens(q string) string {
	locs := clockTokenRx.FindAllStringIndex(q, -1)
	if locs == nil {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 2*len(locs))
	prev := 0
	for _, loc := range locs {
		b.WriteString(q[prev:loc[0]])
		tok := q[loc[0]:loc[1]]
		quoted := loc[0] > 0 && q[loc[0]-1] == '"' && loc[1] < len(q) && q[loc[1]] == '"'
		if quoted {
			b.WriteString(tok)
		} else {
			b.WriteString(`"` + tok + `"`)
		}
		prev = loc[1]
	}
	b.WriteString(q[prev:])
	return b.String()
}

// dropStrayClosers removes runs of '>' that are not part of an IRI closer
// or a comparison operator, i.e. not preceded by '<', '>', '=' or '!'.
func dropStrayClosers(q string) string {
	var b strings.Builder
	b.Grow(len(q))
	for i := 0; i < len(q); i++ {
		c := q[i]
		if c == '>' {
			partOfToken := i > 0 && (q[i-1] == '<' || q[i-1] == '>' || q[i-1] == '=' || q[i-1] == '!')
			if !partOfToken {
				for i+1 < len(q) && q[i+1] == '>' {
					i++
				}
				b.WriteByte(' ')
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

// truncateContains cuts a CONTAINS(...) call with more than two
// comma-separated arguments down to its first two.
func truncateContains(q string) string {
	return containsCallRx.ReplaceAllStringFunc(q, func(m string) string {
		sub := containsCallRx.FindStringSubmatch(m)
		args := strings.Split(sub[1], ",")
		if len(args) <= 2 {
			return m
		}
		return "CONTAINS(" + strings.TrimSpace(args[0]) + ", " + strings.TrimSpace(args[1]) + ")"
	})
}

// extractWhereBody splits a query into head, WHERE body, and tail. The body
// is the first {...} block after a case-insensitive WHERE keyword, falling
// back to the first {...} block anywhere. Returns ok=false when the query
// has no brace block at all.
func extractWhereBody(q string) (head, body, tail string, ok bool) {
	loc := whereBodyRx.FindStringSubmatchIndex(q)
	if loc == nil {
		loc = braceBodyRx.FindStringSubmatchIndex(q)
	}
	if loc == nil {
		return "", "", "", false
	}
	return q[:loc[2]], q[loc[2]:loc[3]], q[loc[3]:], true
}

// normalizeText collapses whitespace, canonicalizes keyword casing, and
// fixes spacing around braces and ORDER BY / LIMIT.
func normalizeText(q string) string {
	q = whitespaceRx.ReplaceAllString(strings.TrimSpace(q), " ")
	q = selectKwRx.ReplaceAllString(q, "SELECT")
	q = askKwRx.ReplaceAllString(q, "ASK")
	q = orderByKwRx.ReplaceAllString(q, "ORDER BY")
	q = limitKwRx.ReplaceAllString(q, "LIMIT")
	q = openBraceRx.ReplaceAllString(q, " { ")
	q = closeBraceRx.ReplaceAllString(q, " } ")
	q = orderDescRx.ReplaceAllString(q, "ORDER BY DESC(")
	q = closeLimitRx.ReplaceAllString(q, ") LIMIT")
	return strings.TrimSpace(q)
}

// rebalance makes open/close counts for one delimiter pair equal. Excess
// trailing closers are stripped; missing closers are appended as filler.
// This guarantees structural balance, not semantic correctness.
func rebalance(q string, open, close byte, filler string) string {
	opens := strings.Count(q, string(open))
	closes := strings.Count(q, string(close))

	for closes > opens {
		trimmed := strings.TrimRight(q, " \t\n")
		if trimmed == "" || trimmed[len(trimmed)-1] != close {
			break
		}
		q = trimmed[:len(trimmed)-1]
		closes--
	}
	if opens > closes {
		q += strings.Repeat(filler, opens-closes)
	}
	return q
}
