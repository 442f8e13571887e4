package mapping

import (
	"time"

	"github.com/samber/lo"

	"github.com/eslsoft/revise/internal/entity"
)

// ProgressRecord is the JSON shape of one progress record.
type ProgressRecord struct {
	ID              int64      `json:"id"`
	UnitID          int64      `json:"unit_id"`
	Status          string     `json:"status"`
	NextReviewAt    time.Time  `json:"next_review_at"`
	LastReviewAt    *time.Time `json:"last_review_at,omitempty"`
	IntervalDays    int32      `json:"interval_days"`
	EaseFactor      float64    `json:"ease_factor"`
	Repetitions     int32      `json:"repetitions"`
	IncorrectCount  int32      `json:"incorrect_count"`
	TotalAttempts   int32      `json:"total_attempts"`
	CorrectAttempts int32      `json:"correct_attempts"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ProgressPage is one page of progress records with the total count.
type ProgressPage struct {
	Records []ProgressRecord `json:"records"`
	Total   int64            `json:"total"`
}

// FromProgressRecords converts a page of domain records to its JSON
// shape.
func FromProgressRecords(recs []*entity.ProgressRecord, total int64) *ProgressPage {
	return &ProgressPage{
		Records: lo.Map(recs, func(rec *entity.ProgressRecord, _ int) ProgressRecord {
			return fromProgressRecord(rec)
		}),
		Total: total,
	}
}

func fromProgressRecord(in *entity.ProgressRecord) ProgressRecord {
	return ProgressRecord{
		ID:              in.ID,
		UnitID:          in.UnitID,
		Status:          string(in.Status),
		NextReviewAt:    in.NextReviewAt,
		LastReviewAt:    in.LastReviewAt,
		IntervalDays:    in.IntervalDays,
		EaseFactor:      in.EaseFactor,
		Repetitions:     in.Repetitions,
		IncorrectCount:  in.IncorrectCount,
		TotalAttempts:   in.TotalAttempts,
		CorrectAttempts: in.CorrectAttempts,
		CreatedAt:       in.CreatedAt,
		UpdatedAt:       in.UpdatedAt,
	}
}
