package srs

import "github.com/eslsoft/revise/internal/entity"

// StageOf maps a record's scheduling state to the heuristic stage used
// for exercise selection. It reads only status, repetitions and
// interval, and its result is never persisted.
func StageOf(rec *entity.ProgressRecord) entity.Stage {
	switch {
	case rec.Status == entity.StatusNew || (rec.Repetitions == 0 && rec.IntervalDays == 0):
		return entity.StageNew
	case rec.Repetitions <= 2 && rec.IntervalDays <= 7:
		return entity.StageLearning
	case rec.Repetitions <= 6 && rec.IntervalDays <= 30:
		return entity.StageReview
	default:
		return entity.StageMastered
	}
}
