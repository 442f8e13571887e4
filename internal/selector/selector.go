// Package selector picks one exercise for a session item in two
// explicit stages: first a type suited to the learner's stage and error
// rate, then an instance from the candidate pool. All randomness flows
// through an injected source so tests can fix the sequence.
package selector

import (
	"math/rand"
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/revise/internal/entity"
)

// Rand is the subset of math/rand used by the selector.
type Rand interface {
	Intn(n int) int
}

// Error-rate thresholds steering the type choice.
const (
	highErrorRate   = 0.6
	mediumErrorRate = 0.5
	lowErrorRate    = 0.3
	recallErrorRate = 0.2
)

// Selector chooses exercise types and instances.
type Selector struct {
	rng Rand
}

// New returns a Selector backed by the given random source. A nil rng
// gets a time-seeded source.
func New(rng Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// ChooseType picks the exercise type for a learner at the given stage
// with the given error rate.
func (s *Selector) ChooseType(stage entity.Stage, errorRate float64) entity.ExerciseType {
	switch stage {
	case entity.StageNew:
		if errorRate > highErrorRate {
			return entity.ExerciseTrueFalse
		}
		return entity.ExerciseMultipleChoice

	case entity.StageLearning:
		switch {
		case errorRate > mediumErrorRate:
			return entity.ExerciseTrueFalse
		case errorRate > lowErrorRate:
			return entity.ExerciseMultipleResponse
		default:
			return entity.ExerciseFillInTheBlank
		}

	case entity.StageReview:
		types := []entity.ExerciseType{
			entity.ExerciseMultipleChoice,
			entity.ExerciseMultipleResponse,
			entity.ExerciseFillInTheBlank,
		}
		if errorRate < recallErrorRate {
			types = append(types, entity.ExerciseRecall)
		}
		return types[s.rng.Intn(len(types))]

	default: // mastered
		types := []entity.ExerciseType{
			entity.ExerciseFillInTheBlank,
			entity.ExerciseRecall,
			entity.ExerciseMultipleResponse,
		}
		return types[s.rng.Intn(len(types))]
	}
}

// ChooseExercise picks one instance from the candidate pool. The pool
// is whatever the caller fetched: the typed subset when it was
// non-empty, otherwise the unit's full pool. A nil result means the
// unit has no usable exercise and its content is presented alone.
func (s *Selector) ChooseExercise(stage entity.Stage, errorRate float64, pool []entity.Exercise) *entity.Exercise {
	if len(pool) == 0 {
		return nil
	}

	switch stage {
	case entity.StageNew:
		if pick := s.pickFrom(byDifficulty(pool, entity.DifficultyEasy)); pick != nil {
			return pick
		}
		if pick := s.pickFrom(byType(pool, entity.ExerciseTrueFalse)); pick != nil {
			return pick
		}

	case entity.StageLearning:
		preferred := entity.ExerciseMultipleResponse
		if errorRate > mediumErrorRate {
			preferred = entity.ExerciseTrueFalse
		}
		if pick := s.pickFrom(byType(pool, preferred)); pick != nil {
			return pick
		}

	case entity.StageReview:
		// Uniform over the whole pool.

	default: // mastered
		if pick := s.pickFrom(byDifficulty(pool, entity.DifficultyHard)); pick != nil {
			return pick
		}
		deep := lo.Filter(pool, func(ex entity.Exercise, _ int) bool {
			return ex.Type == entity.ExerciseRecall || ex.Type == entity.ExerciseFillInTheBlank
		})
		if pick := s.pickFrom(deep); pick != nil {
			return pick
		}
	}

	return s.pickFrom(pool)
}

func (s *Selector) pickFrom(pool []entity.Exercise) *entity.Exercise {
	if len(pool) == 0 {
		return nil
	}
	pick := pool[s.rng.Intn(len(pool))]
	return &pick
}

func byDifficulty(pool []entity.Exercise, d entity.Difficulty) []entity.Exercise {
	return lo.Filter(pool, func(ex entity.Exercise, _ int) bool { return ex.Difficulty == d })
}

func byType(pool []entity.Exercise, t entity.ExerciseType) []entity.Exercise {
	return lo.Filter(pool, func(ex entity.Exercise, _ int) bool { return ex.Type == t })
}
