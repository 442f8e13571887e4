package usecase

import (
	"context"
	"time"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

// streakScanDays bounds how far back the streak computation looks.
const streakScanDays = 366

// StatsUsecase aggregates a learner's progress statistics.
type StatsUsecase interface {
	Stats(ctx context.Context, learnerID int64) (*entity.LearnerStats, error)
}

// NewStatsUsecase wires the repositories with a default clock.
func NewStatsUsecase(progress repository.ProgressRepository, logs repository.ReviewLogRepository) StatsUsecase {
	return &statsUsecase{
		progress: progress,
		logs:     logs,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

type statsUsecase struct {
	progress repository.ProgressRepository
	logs     repository.ReviewLogRepository
	clock    func() time.Time
}

// Stats reports status counts, due/overdue counts for the current UTC
// day, lifetime accuracy, today's review activity and the streak.
func (u *statsUsecase) Stats(ctx context.Context, learnerID int64) (*entity.LearnerStats, error) {
	if learnerID <= 0 {
		return nil, entity.ErrInvalidLearner
	}

	now := u.clock()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	counts, err := u.progress.CountByStatus(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	todayDue, err := u.progress.CountDueBetween(ctx, learnerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	overdue, err := u.progress.CountDueBefore(ctx, learnerID, dayStart)
	if err != nil {
		return nil, err
	}
	total, correct, err := u.progress.AttemptTotals(ctx, learnerID)
	if err != nil {
		return nil, err
	}
	today, err := u.logs.DayStats(ctx, learnerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	activeDays, err := u.logs.RecentDays(ctx, learnerID, streakScanDays)
	if err != nil {
		return nil, err
	}

	return &entity.LearnerStats{
		Overall: entity.OverallStats{
			New:             counts[entity.StatusNew],
			Learning:        counts[entity.StatusLearning],
			Learned:         counts[entity.StatusLearned],
			Mastered:        counts[entity.StatusMastered],
			TodayReview:     todayDue,
			Overdue:         overdue,
			TotalAttempts:   total,
			CorrectAttempts: correct,
			Accuracy:        entity.AccuracyPercent(correct, total),
		},
		Today: entity.TodayStats{
			Reviews:  today.Reviews,
			Correct:  today.Correct,
			Accuracy: entity.AccuracyPercent(today.Correct, today.Reviews),
		},
		Streak: streakOf(activeDays, dayStart),
	}, nil
}

// streakOf counts consecutive active UTC days ending today, or ending
// yesterday when today has no reviews yet. Days arrive newest first.
func streakOf(days []repository.DayActivity, today time.Time) int {
	if len(days) == 0 {
		return 0
	}

	expected := today
	if !days[0].Day.Equal(today) {
		expected = today.AddDate(0, 0, -1)
	}

	streak := 0
	for _, day := range days {
		if !day.Day.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}
