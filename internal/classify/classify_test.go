package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_CompositionNestedClause(t *testing.T) {
	r := Classify("Which actor starred in the film that the famous Italian director wrote in Rome?", "Marcello Mastroianni")
	assert.Equal(t, TypeComposition, r.QuestionType)
}

func TestClassify_CompositionDistantWith(t *testing.T) {
	// "with" far from the WH-word is a non-local constraint.
	r := Classify("Which country has a city with more than five million people?", "Japan")
	assert.Equal(t, TypeComposition, r.QuestionType)
}

func TestClassify_LocalWithStaysSimple(t *testing.T) {
	// "with" close to the WH-word is shallow filtering, and the branch
	// is exclusive: no later heuristic runs.
	r := Classify("Who with red hair?", "Anne Shirley")
	assert.Equal(t, TypeSimple, r.QuestionType)
}

func TestClassify_IntersectionBothAnd(t *testing.T) {
	r := Classify("Which films were both written and directed by Spielberg?", "Duel")
	assert.Equal(t, TypeIntersection, r.QuestionType)
}

func TestClassify_IntersectionAndWithPrepositions(t *testing.T) {
	r := Classify("Who won in 1951 and in 1957?", "Juan Fangio")
	assert.Equal(t, TypeIntersection, r.QuestionType)
}

func TestClassify_IntersectionSemanticFilters(t *testing.T) {
	r := Classify("What type of structure was discovered by William?", "a tomb")
	assert.Equal(t, TypeIntersection, r.QuestionType)
}

func TestClassify_IntersectionDomainCues(t *testing.T) {
	// Two domain filter cues plus two years, without "and".
	r := Classify("Which team won the league in 1951 after losing the 1950 final?", "Milan")
	assert.Equal(t, TypeIntersection, r.QuestionType)
}

func TestClassify_SimpleQuestion(t *testing.T) {
	r := Classify("Who won the World Cup in 2018?", "the French national team")
	assert.Equal(t, TypeSimple, r.QuestionType)
}

func TestClassify_CountingSkill(t *testing.T) {
	r := Classify("How many goals were scored?", "12")
	assert.Contains(t, r.Skills, "Counting")
	assert.Equal(t, "Number", r.AnswerType)
}

func TestClassify_SkillCap(t *testing.T) {
	// A cue-dense question still reports at most three skills.
	r := Classify("What is the total sum of the most points scored before 1990 and after 1985 by every team?", "400")
	assert.LessOrEqual(t, len(r.Skills), 3)
	assert.NotEmpty(t, r.Skills)
}

func TestClassify_FallbackSkillFromAnswerType(t *testing.T) {
	r := Classify("Who won?", "42")
	assert.Equal(t, []string{"Counting"}, r.Skills)

	r = Classify("Who won?", "12 March 1999")
	assert.Equal(t, []string{"Filtering time"}, r.Skills)

	r = Classify("Who won?", "???")
	assert.Equal(t, []string{"No skill"}, r.Skills)
}

func TestInferAnswerType_Priority(t *testing.T) {
	// Date outranks Number even though both would match.
	assert.Equal(t, "Date", InferAnswerType("15 March 1990"))
	assert.Equal(t, "Person", InferAnswerType("Albert Einstein"))
	assert.Equal(t, "Number", InferAnswerType("42"))
	assert.Equal(t, "Unknown", InferAnswerType("???"))
}

func TestInferAnswerType_PersonPatternIsCaseInsensitive(t *testing.T) {
	// The Person pattern matches any two-word run regardless of casing,
	// so multi-word answers resolve to Person before the later cues can
	// fire. Location and Group only win for answers the Person pattern
	// cannot match.
	assert.Equal(t, "Person", InferAnswerType("the river Thames"))
	assert.Equal(t, "Person", InferAnswerType("a jazz band"))
	assert.Equal(t, "Location", InferAnswerType("river"))
	assert.Equal(t, "Group", InferAnswerType("band"))
}

func TestInferAnswerType_Empty(t *testing.T) {
	assert.Equal(t, "Unknown", InferAnswerType(""))
}
