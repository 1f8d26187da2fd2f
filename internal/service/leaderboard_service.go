package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/ptdat2/Magpie/internal/dto"
	"github.com/ptdat2/Magpie/internal/model"
	"github.com/ptdat2/Magpie/internal/repository"
)

// LeaderboardService ranks students by their best scored attempt on a test.
type LeaderboardService interface {
	GetLeaderboard(ctx context.Context, testID uint) (*dto.LeaderboardResponse, error)
	// ListTests returns every known test ordered by name.
	ListTests(ctx context.Context) ([]dto.TestResponse, error)
}

type leaderboardService struct {
	testRepo    repository.TestRepository
	attemptRepo repository.AttemptRepository
}

func NewLeaderboardService(testRepo repository.TestRepository, attemptRepo repository.AttemptRepository) LeaderboardService {
	return &leaderboardService{testRepo: testRepo, attemptRepo: attemptRepo}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, testID uint) (*dto.LeaderboardResponse, error) {
	test, err := s.testRepo.FindByID(ctx, testID)
	if err != nil {
		return nil, err
	}

	attempts, err := s.attemptRepo.FindScoredByTest(ctx, testID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scored attempts for test %d: %w", testID, err)
	}

	ranked := make([]*model.Attempt, 0, len(attempts))
	for i := range attempts {
		if attempts[i].Score != nil {
			ranked = append(ranked, &attempts[i])
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score.Score != b.Score.Score {
			return a.Score.Score > b.Score.Score
		}
		if a.Score.Accuracy != b.Score.Accuracy {
			return a.Score.Accuracy > b.Score.Accuracy
		}
		if a.Score.NetCorrect != b.Score.NetCorrect {
			return a.Score.NetCorrect > b.Score.NetCorrect
		}
		at, bt := a.EffectiveTime(), b.EffectiveTime()
		if !at.Equal(bt) {
			return at.Before(bt)
		}
		return a.ID < b.ID
	})

	resp := &dto.LeaderboardResponse{
		TestID:   test.ID,
		TestName: test.Name,
		Entries:  make([]dto.LeaderboardEntry, 0, len(ranked)),
	}
	seen := make(map[uint]bool, len(ranked))
	for _, attempt := range ranked {
		if seen[attempt.StudentID] {
			continue
		}
		seen[attempt.StudentID] = true
		resp.Entries = append(resp.Entries, dto.LeaderboardEntry{
			Rank:        len(resp.Entries) + 1,
			StudentID:   attempt.StudentID,
			FullName:    attempt.Student.FullName,
			Email:       attempt.Student.Email,
			Phone:       attempt.Student.Phone,
			AttemptID:   attempt.ID,
			Score:       attempt.Score.Score,
			Accuracy:    attempt.Score.Accuracy,
			NetCorrect:  attempt.Score.NetCorrect,
			Correct:     attempt.Score.CorrectCount,
			Wrong:       attempt.Score.WrongCount,
			Skipped:     attempt.Score.SkippedCount,
			SubmittedAt: attempt.SubmittedAt,
		})
	}
	return resp, nil
}

func (s *leaderboardService) ListTests(ctx context.Context) ([]dto.TestResponse, error) {
	tests, err := s.testRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}
	resp := make([]dto.TestResponse, 0, len(tests))
	for _, t := range tests {
		resp = append(resp, dto.TestResponse{
			ID:            t.ID,
			Name:          t.Name,
			MaxMarks:      t.MaxMarks,
			MarkingScheme: t.MarkingScheme,
			CreatedAt:     t.CreatedAt,
		})
	}
	return resp, nil
}
