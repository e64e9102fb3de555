package service

import (
	"context"
	"fmt"

	"studentportal/internal/model"
	"studentportal/internal/repository"
	"studentportal/internal/seed"
)

type ScorePointView struct {
	Date  string `json:"date"`
	Score int    `json:"score"`
}

type PerformanceView struct {
	User     string                      `json:"user"`
	Subjects map[string][]ScorePointView `json:"subjects"`
}

type PerformanceService struct {
	scores repository.ScoreRepository
}

func NewPerformanceService(scores repository.ScoreRepository) *PerformanceService {
	return &PerformanceService{scores: scores}
}

// Data returns, per scored subject, the earliest points of u's series by date, at most one series length.
func (s *PerformanceService) Data(ctx context.Context, u *model.User) (*PerformanceView, error) {
	v := &PerformanceView{
		User:     u.FullName(),
		Subjects: make(map[string][]ScorePointView, len(seed.ScoredSubjects)),
	}
	for _, subject := range seed.ScoredSubjects {
		points, err := s.scores.ListScores(ctx, u.ID, subject, seed.ActivityDays)
		if err != nil {
			return nil, fmt.Errorf("scores for %s: %w", subject, err)
		}
		series := make([]ScorePointView, 0, len(points))
		for _, p := range points {
			series = append(series, ScorePointView{Date: p.Date, Score: p.Score})
		}
		v.Subjects[subject] = series
	}
	return v, nil
}
