package entity

import "time"

// Status is the persisted coarse learning bucket of a progress record.
// It is authoritative for statistics and UI and is written only by the
// review flow.
type Status string

const (
	StatusNew      Status = "new"
	StatusLearning Status = "learning"
	StatusLearned  Status = "learned"
	StatusMastered Status = "mastered"
)

// IsValid reports whether s is one of the known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusLearning, StatusLearned, StatusMastered:
		return true
	}
	return false
}

// Default scheduling parameters for a freshly created record.
const (
	DefaultEaseFactor = 2.5
	MinEaseFactor     = 1.3
)

// ProgressRecord is the per-(learner, knowledge unit) scheduling state.
// At most one record exists per pair; the store enforces that with a
// composite unique index. All review timestamps are UTC.
type ProgressRecord struct {
	ID              int64
	LearnerID       int64
	UnitID          int64
	Status          Status
	NextReviewAt    time.Time
	LastReviewAt    *time.Time
	IntervalDays    int32
	EaseFactor      float64
	Repetitions     int32
	IncorrectCount  int32
	TotalAttempts   int32
	CorrectAttempts int32
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewProgressRecord builds the initial record for a learner's first
// exposure to a knowledge unit: immediately due, never reviewed.
func NewProgressRecord(learnerID, unitID int64, now time.Time) *ProgressRecord {
	return &ProgressRecord{
		LearnerID:    learnerID,
		UnitID:       unitID,
		Status:       StatusNew,
		NextReviewAt: now,
		IntervalDays: 0,
		EaseFactor:   DefaultEaseFactor,
		Repetitions:  0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ErrorRate is the share of incorrect answers over all attempts,
// 0 when the record has never been attempted.
func (p *ProgressRecord) ErrorRate() float64 {
	if p.TotalAttempts == 0 {
		return 0
	}
	return float64(p.IncorrectCount) / float64(p.TotalAttempts)
}

// Normalize ensures defaults & constraints before persistence.
func (p *ProgressRecord) Normalize(now time.Time) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = StatusNew
	}
	if p.EaseFactor < MinEaseFactor {
		p.EaseFactor = DefaultEaseFactor
	}
	if p.NextReviewAt.IsZero() {
		p.NextReviewAt = now
	}
}
