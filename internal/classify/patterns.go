package classify

import "regexp"

// skillPattern pairs a reasoning skill with the cue regexes that detect
// it. Order matters: it is the tie-break order when several skills match.
type skillPattern struct {
	name string
	cues []*regexp.Regexp
}

func cues(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// Reasoning skill cue tables, drawn from the TabFact, TANQ, and QTSumm
// skill taxonomies. Matched against the lowercased question.
var skillPatterns = []skillPattern{
	{"Aggregation", cues(`total`, `sum of`, `overall`)},
	{"Negation", cues(` did not `, ` does not `, ` not `, ` never `, `has never `, `no `, ` what other `)},
	{"Superlative", cues(`most `, `least `, `highest`, `lowest`, `best`, `worst`, `largest`, `smallest`, `longest`, `shortest`, `earliest`, `latest`)},
	{"Comparative", cues(` earlier than `, ` later than `, ` before `, ` after `, ` more than `, ` greater than `, ` less than `, ` fewer than `, ` higher than `, ` lower than `, ` older than `, ` younger than `)},
	{"Ordinal", cues(` first `, ` second `, ` third `, ` 1st `, ` 2nd `, ` 3rd `, ` last `, ` next `)},
	{"Unique", cues(`different`, `unique`, `only one`, `no two`)},
	{"All", cues(`all of`, `every `, `none of`)},
	{"Filtering numeric", cues(` greater than `, ` less than `, ` more than `, ` fewer than `, `>`, `<`, `at least`, `at most`)},
	{"Filtering time", cues(` before `, ` after `, ` earlier than `, ` later than `, `since `, `until `, `date`, ` year of `, ` in what year`, ` year was`, ` on which date`, ` what date`, ` on what date`, `date of`, `date did`, `when was`)},
	{"Filtering entity", cues(` whose `, ` with `, `where .* is `)},
	{"Average", cues(` sum of `, ` average of `, `avg of`, ` total of `, `average `, `mean `)},
	{"Difference", cues(` how many years`, ` how long`, ` lived`, ` years old`, `difference in years`, ` difference between`, ` how many more`, ` how many less`, ` how much more`, ` difference in`)},
}

// answerPattern pairs an answer type with its detection regexes. The slice
// order is the priority order (Date beats Number, and so on); the first
// match wins.
type answerPattern struct {
	name string
	cues []*regexp.Regexp
}

var answerTypePatterns = []answerPattern{
	{"Date", cues(
		`(?i)\b\d{1,2} (january|february|march|april|may|june|july|august|september|october|november|december) \d{4}\b`,
		`(?i)\b(\d{4}|\d{1,2} (January|February|March|April|May|June|July|August|September|October|November|December)|\d{1,2}/\d{1,2}/\d{2,4})\b`,
		`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december) \d{1,2}\b`,
	)},
	{"Person", cues(`(?i)\b([A-Z][a-z]+ [A-Z][a-z]+)\b`)},
	{"Location", cues(`(?i)\b(road|avenue|street|city|state|country|river|mountain|park|lake|building|airport|station|square|valley|island|region|area)\b`)},
	{"Group", cues(`(?i)\b(team|band|group|organization|committee|council|corporation|company)\b`)},
	{"Event", cues(`(?i)\b(war|battle|conference|summit|meeting|ceremony|game|match|tournament)\b`)},
	{"Artwork", cues(`(?i)\b(song|album|book|movie|film|novel|painting|sculpture|opera)\b`)},
	{"Adjective", cues(`(?i)\b(best|worst|largest|smallest|most|least|first|second|last|only)\b`)},
	{"Other proper noun", cues(`(?i)\b([A-Z][a-z]+(?: [A-Z][a-z]+)+)\b`)},
	{"Common noun", cues(`(?i)\b(musician|writer|teacher|city|dog|car|food|instrument)\b`)},
	{"Number", cues(`(?i)[-+]?[.,\d]*[\d]+(?:[.,\d]*)?(?:\s*(?:m|km|ft|kg|lbs|years|minutes|seconds|people|times|percent|%)\b)?`)},
}

// Question-structure cue regexes.
var (
	whWordRx    = regexp.MustCompile(`\b(who|what|which|how|when|how many)\b`)
	nestedCueRx = regexp.MustCompile(`\b(that|whose|where|who has|who have|that has|that have)\b`)
	wordRx      = regexp.MustCompile(`\b\w+\b`)
	bothAndRx   = regexp.MustCompile(`\bboth\b.*\band\b`)
	andRx       = regexp.MustCompile(`\band\b`)
	prepRx      = regexp.MustCompile(`\b(in|with|for|of|from|by|at|on|when|where|which)\b`)
	madeByRx    = regexp.MustCompile(`(discovered by|written by|founded by|built by|composed by)`)
	kindOfRx    = regexp.MustCompile(`(type|kind|category|group|genre|form|class|species)`)
	yearRx      = regexp.MustCompile(`\b\d{4}\b`)

	// Domain filter cues used by the last-resort Intersection heuristic.
	domainFilterRxs = cues(
		`\b\d{4}\b`,
		`serie a|serie b|league|division|club|team`,
		`match|game|season|round`,
	)
)
