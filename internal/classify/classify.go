// Package classify categorizes table-QA examples into structural question
// types (Simple, Intersection, Composition), detects the reasoning skills
// a question exercises, and infers the type of the final answer. All
// detection is regex-heuristic over normalized text; there is no model
// inference.
package classify

import (
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Question types, in priority order: Composition > Intersection > Simple.
const (
	TypeSimple       = "Simple"
	TypeIntersection = "Intersection"
	TypeComposition  = "Composition"
)

// Result holds one example's classification.
type Result struct {
	QuestionType string
	Skills       []string // up to 3, highest-signal first
	AnswerType   string
}

// maxSkills bounds how many detected skills are reported per question.
const maxSkills = 3

// Classify categorizes one question/answer pair.
func Classify(question, answer string) Result {
	q := normalize(question)

	qtype := classifyQuestionType(q)
	skills := detectSkills(q)
	answerType := InferAnswerType(answer)

	// Recover a skill from the answer type when no question cue fired.
	if len(skills) == 0 {
		switch answerType {
		case "Number":
			skills = []string{"Counting"}
		case "Date":
			skills = []string{"Filtering time"}
		default:
			skills = []string{"No skill"}
		}
	}

	return Result{QuestionType: qtype, Skills: skills, AnswerType: answerType}
}

// InferAnswerType matches the answer against the prioritized pattern
// table; the first matching type wins. Unmatched answers are "Unknown".
func InferAnswerType(answer string) string {
	a := norm.NFC.String(answer)
	for _, ap := range answerTypePatterns {
		for _, cue := range ap.cues {
			if cue.MatchString(a) {
				return ap.name
			}
		}
	}
	return "Unknown"
}

// classifyQuestionType applies the structural heuristics in priority
// order. Each branch is exclusive: the first condition that holds decides
// the outcome of the chain, with a final domain-cue fallback that can
// still upgrade Simple to Intersection.
func classifyQuestionType(q string) string {
	qtype := TypeSimple

	hasWh := whWordRx.MatchString(q)

	switch {
	case hasWh && nestedCueRx.MatchString(q) && len(wordRx.FindAllString(q, -1)) > 10:
		// Entity chaining through a nested clause, excluding short
		// questions where "that"/"where" is usually a filter.
		qtype = TypeComposition

	case hasWh && strings.Contains(q, " with "):
		// "with" reads as composition only when it is distant from the
		// WH-word, i.e. a non-local constraint.
		whPos := whWordRx.FindStringIndex(q)[0]
		withPos := strings.Index(q, " with ")
		if withPos-whPos > 20 {
			qtype = TypeComposition
		}

	case bothAndRx.MatchString(q) ||
		(andRx.MatchString(q) && len(prepRx.FindAllString(q, -1)) >= 2):
		// Multiple simultaneous constraints.
		qtype = TypeIntersection

	case madeByRx.MatchString(q) && kindOfRx.MatchString(q):
		// Semantically combined filters, e.g. "what type of structure
		// was discovered by William".
		qtype = TypeIntersection
	}

	// Domain-cue fallback: several co-occurring filter cues (years,
	// competition terms) also indicate Intersection.
	if qtype == TypeSimple {
		hits := 0
		for _, rx := range domainFilterRxs {
			if rx.MatchString(q) {
				hits++
			}
		}
		if hits >= 2 && (andRx.MatchString(q) || len(yearRx.FindAllString(q, -1)) >= 2) {
			qtype = TypeIntersection
		}
	}

	return qtype
}

// detectSkills returns up to maxSkills skills whose cues fire on the
// question, ordered by hit count then by table order.
func detectSkills(q string) []string {
	type hit struct {
		name  string
		count int
		order int
	}
	var hits []hit

	for i, sp := range skillPatterns {
		for _, cue := range sp.cues {
			if cue.MatchString(q) {
				hits = append(hits, hit{name: sp.name, count: 1, order: i})
				break
			}
		}
	}

	if strings.HasPrefix(strings.TrimSpace(q), "how many") ||
		strings.Contains(q, " how many ") ||
		strings.Contains(q, " number of ") {
		hits = append(hits, hit{name: "Counting", count: 1, order: len(skillPatterns)})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].count > hits[j].count })

	skills := make([]string, 0, maxSkills)
	for _, h := range hits {
		skills = append(skills, h.name)
		if len(skills) == maxSkills {
			break
		}
	}
	return skills
}

// normalize lowercases and NFC-normalizes question text so the ASCII cue
// tables behave consistently on composed and decomposed input.
func normalize(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}
