package usecase

import (
	"context"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

// ProgressUsecase exposes read-only access to a learner's progress
// records. Mutation stays with the session and review flows.
type ProgressUsecase interface {
	ListProgress(ctx context.Context, query *repository.ListProgressQuery) ([]*entity.ProgressRecord, int64, error)
}

// NewProgressUsecase wires the repository.
func NewProgressUsecase(progress repository.ProgressRepository) ProgressUsecase {
	return &progressUsecase{progress: progress}
}

type progressUsecase struct {
	progress repository.ProgressRepository
}

func (u *progressUsecase) ListProgress(ctx context.Context, query *repository.ListProgressQuery) ([]*entity.ProgressRecord, int64, error) {
	if query == nil || query.LearnerID <= 0 {
		return nil, 0, entity.ErrInvalidLearner
	}
	return u.progress.List(ctx, query)
}
