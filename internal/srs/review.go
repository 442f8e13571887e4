package srs

import (
	"math"
	"time"

	"github.com/eslsoft/revise/internal/entity"
)

// Result is the scheduling state produced by one review.
type Result struct {
	IntervalDays int32
	EaseFactor   float64
	Repetitions  int32
	NextReviewAt time.Time
	LastReviewAt time.Time
	Status       entity.Status
}

// Thresholds for the recomputed status bucket.
const (
	masteredMinRepetitions = 4
	masteredMinInterval    = 21
	learnedMinRepetitions  = 2
)

// Review applies one performance signal to the record's current
// scheduling state and returns the next one. The ease factor has a
// floor of 1.3 and intentionally no ceiling; repeated easy answers let
// it grow without bound. The returned ease factor is rounded to two
// decimals, matching what the store persists.
//
// Review panics on an invalid signal: validation belongs to the caller
// and an invalid value reaching this point is a programming error.
func Review(rec *entity.ProgressRecord, signal entity.PerformanceSignal, now time.Time) Result {
	if !signal.IsValid() {
		panic("srs: invalid performance signal " + string(signal))
	}

	interval := rec.IntervalDays
	ease := rec.EaseFactor
	reps := rec.Repetitions

	switch signal {
	case entity.SignalCorrectEasy:
		switch reps {
		case 0:
			interval = 1
		case 1:
			interval = 6
		default:
			interval = int32(math.Round(float64(interval) * ease))
		}
		reps++
		ease += 0.15

	case entity.SignalCorrectHard:
		switch reps {
		case 0:
			interval = 1
		case 1:
			interval = 4
		default:
			interval = int32(math.Round(float64(interval) * ease * 0.8))
		}
		reps++
		ease -= 0.1

	case entity.SignalIncorrect:
		interval = 1
		reps = 0
		ease -= 0.2
	}

	if ease < entity.MinEaseFactor {
		ease = entity.MinEaseFactor
	}
	ease = math.Round(ease*100) / 100

	return Result{
		IntervalDays: interval,
		EaseFactor:   ease,
		Repetitions:  reps,
		NextReviewAt: now.AddDate(0, 0, int(interval)),
		LastReviewAt: now,
		Status:       statusFor(reps, interval),
	}
}

// statusFor recomputes the persisted status bucket from scratch; prior
// status never carries over, so a lapse demotes a mastered record.
func statusFor(repetitions, intervalDays int32) entity.Status {
	switch {
	case repetitions >= masteredMinRepetitions && intervalDays >= masteredMinInterval:
		return entity.StatusMastered
	case repetitions >= learnedMinRepetitions:
		return entity.StatusLearned
	default:
		return entity.StatusLearning
	}
}

// ExpectedStatus exposes the recomputation rule for data-quality
// audits: a persisted status diverging from it is logged, never fixed.
func ExpectedStatus(repetitions, intervalDays int32) entity.Status {
	return statusFor(repetitions, intervalDays)
}
