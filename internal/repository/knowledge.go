package repository

import (
	"context"

	"github.com/eslsoft/revise/internal/entity"
)

// KnowledgeRepository reads externally-owned learning content. The
// scheduling core never writes through it.
type KnowledgeRepository interface {
	GetUnits(ctx context.Context, ids []int64) ([]*entity.KnowledgeUnit, error)
	// ListUnassigned returns units the learner has no progress record
	// for yet, in implementation-defined order, capped at limit.
	ListUnassigned(ctx context.Context, learnerID int64, limit int) ([]*entity.KnowledgeUnit, error)
}

// ExerciseRepository reads exercises linked to knowledge units.
type ExerciseRepository interface {
	// ListByIDs returns the exercises with the given ids, optionally
	// restricted to one type. The type filter is the first stage of
	// the typed-pool-then-full-pool selection contract.
	ListByIDs(ctx context.Context, ids []int64, typeFilter *entity.ExerciseType) ([]entity.Exercise, error)
}
