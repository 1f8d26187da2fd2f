package scoring

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ptdat2/Magpie/internal/model"
)

func ptr(f float64) *float64 { return &f }

func jeeScheme() model.MarkingScheme {
	return model.MarkingScheme{Correct: ptr(4), Wrong: ptr(-1), Skip: ptr(0)}
}

// sheet builds 75 answers: qa 1..60 keyed correct, 61..70 keyed wrong,
// 71..75 skipped.
func keyedSheet() (model.AnswerMap, map[string]string) {
	answers := make(model.AnswerMap, 75)
	key := make(map[string]string, 70)
	for i := 1; i <= 60; i++ {
		q := fmt.Sprintf("q%d", i)
		answers[q] = "A"
		key[q] = "A"
	}
	for i := 61; i <= 70; i++ {
		q := fmt.Sprintf("q%d", i)
		answers[q] = "B"
		key[q] = "C"
	}
	for i := 71; i <= 75; i++ {
		answers[fmt.Sprintf("q%d", i)] = SkipToken
	}
	return answers, key
}

func TestCompute_KeyedFormula(t *testing.T) {
	answers, key := keyedSheet()

	res := Compute(answers, jeeScheme(), key)

	assert.Equal(t, 60, res.Correct)
	assert.Equal(t, 10, res.Wrong)
	assert.Equal(t, 5, res.Skipped)
	assert.Equal(t, 75, res.TotalQuestions)
	assert.Equal(t, 230.0, res.Score, "60*4 + 10*(-1) + 5*0")
	assert.Equal(t, 85.71, res.Accuracy, "60/70 rounded to 2 decimals")
	assert.Equal(t, 50, res.NetCorrect)
	assert.True(t, res.AnswerKeyUsed)
	assert.Empty(t, res.Warnings)
}

func TestCompute_Deterministic(t *testing.T) {
	answers, key := keyedSheet()
	first := Compute(answers, jeeScheme(), key)
	second := Compute(answers, jeeScheme(), key)
	assert.Equal(t, first, second, "same inputs must always produce the same result")
}

func TestCompute_UnkeyedDefaultsToCorrect(t *testing.T) {
	answers := model.AnswerMap{"q1": "A", "q2": "D", "q3": SkipToken}

	res := Compute(answers, jeeScheme(), nil)

	assert.Equal(t, 2, res.Correct, "non-skip answers count as correct without a key")
	assert.Equal(t, 0, res.Wrong)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 8.0, res.Score)
	assert.Equal(t, 100.0, res.Accuracy)
	assert.False(t, res.AnswerKeyUsed)
}

func TestCompute_UnkeyedQuestionsStayCorrectUnderPartialKey(t *testing.T) {
	answers := model.AnswerMap{"q1": "A", "q2": "D"}
	key := map[string]string{"q1": "B"} // q2 has no key entry

	res := Compute(answers, jeeScheme(), key)

	assert.Equal(t, 1, res.Correct, "unkeyed q2 keeps the default-correct treatment")
	assert.Equal(t, 1, res.Wrong)
}

func TestCompute_AllSkippedAccuracyZero(t *testing.T) {
	answers := model.AnswerMap{"q1": SkipToken, "q2": SkipToken}

	res := Compute(answers, jeeScheme(), nil)

	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 0.0, res.Accuracy, "zero answered questions must not divide by zero")
	assert.Equal(t, 0.0, res.Score)
}

func TestCompute_EmptyAnswerCountsAsSkip(t *testing.T) {
	answers := model.AnswerMap{"q1": "", "q2": "  ", "q3": "A"}

	res := Compute(answers, jeeScheme(), nil)

	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1, res.Correct)
}

func TestCompute_MissingSchemeFieldsDefaultWithWarnings(t *testing.T) {
	answers := model.AnswerMap{"q1": "A", "q2": "B", "q3": SkipToken}
	scheme := model.MarkingScheme{Correct: ptr(4)} // wrong and skip absent

	res := Compute(answers, scheme, nil)

	assert.Equal(t, 8.0, res.Score, "missing weights contribute 0")
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "'wrong'")
	assert.Contains(t, res.Warnings[1], "'skip'")
}

func TestCompute_FullyEmptySchemeStillScores(t *testing.T) {
	answers := model.AnswerMap{"q1": "A"}

	res := Compute(answers, model.MarkingScheme{}, nil)

	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, 1, res.Correct)
	assert.Len(t, res.Warnings, 3, "every defaulted field is reported")
}

func TestResult_Explanation(t *testing.T) {
	answers, key := keyedSheet()
	res := Compute(answers, jeeScheme(), key)

	blob, err := res.Explanation()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(blob, &decoded))

	assert.Contains(t, decoded, "marking_scheme")
	assert.Contains(t, decoded, "counts")
	assert.Equal(t, true, decoded["answer_key_used"])
	assert.Equal(t, "(60 × 4) + (10 × -1) + (5 × 0) = 230", decoded["formula"])

	counts, ok := decoded["counts"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(75), counts["total_questions"])
}

func TestCompute_KeyComparisonIsExact(t *testing.T) {
	answers := model.AnswerMap{"q1": "a"}
	key := map[string]string{"q1": "A"}

	res := Compute(answers, jeeScheme(), key)

	assert.Equal(t, 1, res.Wrong, "answer comparison against the key is case-sensitive")
}
