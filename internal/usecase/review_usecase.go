package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
	"github.com/eslsoft/revise/internal/srs"
)

// ReviewUsecase applies one performance signal to one progress record.
type ReviewUsecase interface {
	SubmitAnswer(ctx context.Context, learnerID, progressID int64, signal entity.PerformanceSignal) (*entity.SubmissionResult, error)
}

// NewReviewUsecase wires the repositories with a default clock.
func NewReviewUsecase(
	progress repository.ProgressRepository,
	knowledge repository.KnowledgeRepository,
	logs repository.ReviewLogRepository,
	logger logrus.FieldLogger,
) ReviewUsecase {
	return &reviewUsecase{
		progress:  progress,
		knowledge: knowledge,
		logs:      logs,
		logger:    logger,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

type reviewUsecase struct {
	progress  repository.ProgressRepository
	knowledge repository.KnowledgeRepository
	logs      repository.ReviewLogRepository
	logger    logrus.FieldLogger
	clock     func() time.Time
}

// SubmitAnswer validates input, runs the SRS engine and persists the
// result as a single atomic merge-update. A record owned by another
// learner is indistinguishable from a missing one. The store is never
// retried here; a transient failure surfaces to the transport layer.
func (u *reviewUsecase) SubmitAnswer(ctx context.Context, learnerID, progressID int64, signal entity.PerformanceSignal) (*entity.SubmissionResult, error) {
	if learnerID <= 0 {
		return nil, entity.ErrInvalidLearner
	}
	if progressID <= 0 {
		return nil, entity.ErrInvalidProgressID
	}
	if !signal.IsValid() {
		return nil, fmt.Errorf("%w: %q", entity.ErrInvalidSignal, signal)
	}

	rec, err := u.progress.GetByID(ctx, learnerID, progressID)
	if err != nil {
		return nil, err
	}

	now := u.clock()
	res := srs.Review(rec, signal, now)

	updated, err := u.progress.ApplyReview(ctx, learnerID, progressID, repository.ReviewUpdate{
		IntervalDays: res.IntervalDays,
		EaseFactor:   res.EaseFactor,
		Repetitions:  res.Repetitions,
		NextReviewAt: res.NextReviewAt,
		LastReviewAt: res.LastReviewAt,
		Status:       res.Status,
		Correct:      signal.Correct(),
	})
	if err != nil {
		return nil, err
	}

	// The log feeds daily stats only; the scheduling state is already
	// committed, so a failed append is warned about, not propagated.
	if err := u.logs.Append(ctx, &entity.ReviewLog{
		LearnerID:  learnerID,
		ProgressID: progressID,
		UnitID:     rec.UnitID,
		Signal:     signal,
		Correct:    signal.Correct(),
		ReviewedAt: now,
	}); err != nil {
		u.logger.WithError(err).WithField("progress_id", progressID).Warn("review log append failed")
	}

	recap := entity.UnitRecap{UnitID: rec.UnitID}
	units, err := u.knowledge.GetUnits(ctx, []int64{rec.UnitID})
	if err != nil {
		return nil, err
	}
	if len(units) > 0 {
		recap.Topic = units[0].Topic
		recap.Content = units[0].Content
		recap.KeyPoints = units[0].KeyPoints
	}

	return &entity.SubmissionResult{
		Performance:  signal,
		WasCorrect:   signal.Correct(),
		NextReviewAt: updated.NextReviewAt,
		IntervalDays: updated.IntervalDays,
		Repetitions:  updated.Repetitions,
		Status:       updated.Status,
		Recap:        recap,
	}, nil
}
