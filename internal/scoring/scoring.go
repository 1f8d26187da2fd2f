// Package scoring turns an attempt's answers into a score under a test's
// marking scheme. Compute is a pure function: same inputs, same Result, no
// clock and no storage access.
package scoring

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ptdat2/Magpie/internal/model"
)

// SkipToken marks a deliberately unanswered question in the answer map.
const SkipToken = "SKIP"

// Weights are the marking-scheme values actually applied, after missing
// fields have been defaulted to 0.
type Weights struct {
	Correct float64 `json:"correct"`
	Wrong   float64 `json:"wrong"`
	Skip    float64 `json:"skip"`
}

// Result is the full outcome of scoring one attempt.
type Result struct {
	Correct        int
	Wrong          int
	Skipped        int
	TotalQuestions int
	Score          float64
	Accuracy       float64 // percentage, rounded to 2 decimals
	NetCorrect     int
	Weights        Weights
	AnswerKeyUsed  bool
	// Warnings records degraded-input conditions, e.g. marking-scheme
	// fields that had to be defaulted. Never fatal.
	Warnings []string
}

// Compute classifies every submitted answer and applies the scheme.
//
// Without an answer key every non-skip answer counts as correct; this
// default-correct policy is deliberate, the ingested dataset carries no
// ground truth. With a key, answers to keyed questions are compared exactly
// and unkeyed questions keep the default-correct treatment.
func Compute(answers model.AnswerMap, scheme model.MarkingScheme, answerKey map[string]string) Result {
	res := Result{
		TotalQuestions: len(answers),
		AnswerKeyUsed:  answerKey != nil,
		Weights: Weights{
			Correct: scheme.CorrectWeight(),
			Wrong:   scheme.WrongWeight(),
			Skip:    scheme.SkipWeight(),
		},
	}
	if scheme.Correct == nil {
		res.Warnings = append(res.Warnings, "marking scheme missing 'correct' weight, defaulted to 0")
	}
	if scheme.Wrong == nil {
		res.Warnings = append(res.Warnings, "marking scheme missing 'wrong' weight, defaulted to 0")
	}
	if scheme.Skip == nil {
		res.Warnings = append(res.Warnings, "marking scheme missing 'skip' weight, defaulted to 0")
	}

	for q, a := range answers {
		switch {
		case isSkip(a):
			res.Skipped++
		case answerKey != nil && hasKey(answerKey, q):
			if a == answerKey[q] {
				res.Correct++
			} else {
				res.Wrong++
			}
		default:
			res.Correct++
		}
	}

	res.Score = round2(float64(res.Correct)*res.Weights.Correct +
		float64(res.Wrong)*res.Weights.Wrong +
		float64(res.Skipped)*res.Weights.Skip)
	if answered := res.Correct + res.Wrong; answered > 0 {
		res.Accuracy = round2(float64(res.Correct) / float64(answered) * 100)
	}
	res.NetCorrect = res.Correct - res.Wrong
	return res
}

// Explanation serializes the audit blob stored next to the score: the scheme
// that was applied, the raw counts, the arithmetic, and which classification
// policy ran.
func (r Result) Explanation() ([]byte, error) {
	return json.Marshal(explanation{
		MarkingScheme: r.Weights,
		Counts: counts{
			Correct:        r.Correct,
			Wrong:          r.Wrong,
			Skipped:        r.Skipped,
			TotalQuestions: r.TotalQuestions,
		},
		Formula:       r.Formula(),
		AnswerKeyUsed: r.AnswerKeyUsed,
		Warnings:      r.Warnings,
	})
}

// Formula renders the score arithmetic for human review.
func (r Result) Formula() string {
	return fmt.Sprintf("(%d × %s) + (%d × %s) + (%d × %s) = %s",
		r.Correct, fmtNum(r.Weights.Correct),
		r.Wrong, fmtNum(r.Weights.Wrong),
		r.Skipped, fmtNum(r.Weights.Skip),
		fmtNum(r.Score))
}

type explanation struct {
	MarkingScheme Weights  `json:"marking_scheme"`
	Counts        counts   `json:"counts"`
	Formula       string   `json:"formula"`
	AnswerKeyUsed bool     `json:"answer_key_used"`
	Warnings      []string `json:"warnings,omitempty"`
}

type counts struct {
	Correct        int `json:"correct"`
	Wrong          int `json:"wrong"`
	Skipped        int `json:"skipped"`
	TotalQuestions int `json:"total_questions"`
}

func isSkip(a string) bool {
	return a == SkipToken || strings.TrimSpace(a) == ""
}

func hasKey(key map[string]string, q string) bool {
	_, ok := key[q]
	return ok
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func fmtNum(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
