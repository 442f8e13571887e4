package entity

import "time"

// Stage is the heuristic bucket driving exercise selection. It is
// derived on the fly from a progress record and never written back;
// the persisted Status remains the authoritative bucket for stats.
type Stage string

const (
	StageNew      Stage = "new"
	StageLearning Stage = "learning"
	StageReview   Stage = "review"
	StageMastered Stage = "mastered"
)

// SRSSnapshot is the scheduling state of one record as presented to
// the client, frozen at session-assembly or submission time.
type SRSSnapshot struct {
	Status          Status
	IntervalDays    int32
	Repetitions     int32
	EaseFactor      float64
	NextReviewAt    time.Time
	IncorrectCount  int32
	TotalAttempts   int32
	CorrectAttempts int32
}

// Snapshot freezes the record's scheduling state.
func (p *ProgressRecord) Snapshot() SRSSnapshot {
	return SRSSnapshot{
		Status:          p.Status,
		IntervalDays:    p.IntervalDays,
		Repetitions:     p.Repetitions,
		EaseFactor:      p.EaseFactor,
		NextReviewAt:    p.NextReviewAt,
		IncorrectCount:  p.IncorrectCount,
		TotalAttempts:   p.TotalAttempts,
		CorrectAttempts: p.CorrectAttempts,
	}
}

// SessionItem is one unit of work in a study session. Exercise is nil
// when the unit has no usable exercise; the content alone is presented.
type SessionItem struct {
	ProgressID int64
	Unit       KnowledgeUnit
	Exercise   *Exercise
	SRS        SRSSnapshot
	Stage      Stage
}

// Session is one bounded batch of items for a single sitting. Sessions
// are stateless once returned; nothing server-side tracks them.
type Session struct {
	ID          string
	SessionSize int
	ReviewCount int
	NewCount    int
	Items       []SessionItem
	CreatedAt   time.Time
}

// SubmissionResult is returned after one answer is applied.
type SubmissionResult struct {
	Performance  PerformanceSignal
	WasCorrect   bool
	NextReviewAt time.Time
	IntervalDays int32
	Repetitions  int32
	Status       Status
	Recap        UnitRecap
}
