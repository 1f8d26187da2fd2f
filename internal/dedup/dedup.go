// Package dedup decides whether a new attempt is a near-duplicate of an
// earlier one. It is purely computational: callers fetch the time-window
// candidates and persist the outcome.
package dedup

import (
	"time"

	"github.com/ptdat2/Magpie/internal/model"
)

const (
	// DefaultThreshold is the minimum answer-overlap similarity at which two
	// attempts count as the same sitting.
	DefaultThreshold = 0.92

	// DefaultWindow bounds how far apart two attempts may start and still be
	// considered duplicates. The window is inclusive on both ends.
	DefaultWindow = 7 * time.Minute
)

// Match describes the duplicate resolution for a new attempt.
type Match struct {
	CandidateID   uint    // the existing attempt that matched
	CanonicalID   uint    // the root attempt the new one must point at
	Similarity    float64 // matching / common answered questions
	CommonAnswers int
}

// Engine applies the similarity threshold to window candidates.
type Engine struct {
	threshold float64
}

func NewEngine(threshold float64) *Engine {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	return &Engine{threshold: threshold}
}

func (e *Engine) Threshold() float64 { return e.threshold }

// Similarity is the fraction of commonly answered questions with identical
// answers. It also returns the number of common keys; with none, the ratio
// is undefined and the pair can never be a duplicate.
func Similarity(a, b model.AnswerMap) (float64, int) {
	common, matching := 0, 0
	for k, va := range a {
		vb, ok := b[k]
		if !ok {
			continue
		}
		common++
		if va == vb {
			matching++
		}
	}
	if common == 0 {
		return 0, 0
	}
	return float64(matching) / float64(common), common
}

// FindDuplicate scans candidates (same student, same test, started within the
// window) and returns the match to record, or nil when the attempt stands on
// its own. Among qualifying candidates the one with the earliest started_at
// wins, ties broken by lowest id, independent of input order. When the winner
// is itself a duplicate, the match points at its canonical root so duplicate
// chains stay flat.
func (e *Engine) FindDuplicate(answers model.AnswerMap, candidates []model.Attempt) *Match {
	var winner *model.Attempt
	var winnerSim float64
	var winnerCommon int

	for i := range candidates {
		c := &candidates[i]
		sim, common := Similarity(answers, c.Answers)
		if common == 0 || sim < e.threshold {
			continue
		}
		if winner == nil || earlier(c, winner) {
			winner, winnerSim, winnerCommon = c, sim, common
		}
	}
	if winner == nil {
		return nil
	}

	canonical := winner.ID
	if winner.DuplicateOfAttemptID != nil {
		canonical = *winner.DuplicateOfAttemptID
	}
	return &Match{
		CandidateID:   winner.ID,
		CanonicalID:   canonical,
		Similarity:    winnerSim,
		CommonAnswers: winnerCommon,
	}
}

func earlier(a, b *model.Attempt) bool {
	if !a.StartedAt.Equal(b.StartedAt) {
		return a.StartedAt.Before(b.StartedAt)
	}
	return a.ID < b.ID
}
