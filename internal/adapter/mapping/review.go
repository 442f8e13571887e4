package mapping

import (
	"time"

	"github.com/eslsoft/revise/internal/entity"
)

// SubmitAnswerRequest is the JSON body of an answer submission.
type SubmitAnswerRequest struct {
	ProgressID  int64  `json:"progress_id"`
	Performance string `json:"performance"`
}

// SubmissionResult is the JSON shape returned after one answer.
type SubmissionResult struct {
	Performance  string    `json:"performance"`
	WasCorrect   bool      `json:"was_correct"`
	NextReviewAt time.Time `json:"next_review_at"`
	IntervalDays int32     `json:"interval_days"`
	Repetitions  int32     `json:"repetitions"`
	Status       string    `json:"status"`
	Recap        UnitRecap `json:"recap"`
}

type UnitRecap struct {
	UnitID    int64    `json:"unit_id"`
	Topic     string   `json:"topic"`
	Content   string   `json:"content"`
	KeyPoints []string `json:"key_points,omitempty"`
}

// FromSubmissionResult converts a domain submission result to its
// JSON shape.
func FromSubmissionResult(in *entity.SubmissionResult) *SubmissionResult {
	return &SubmissionResult{
		Performance:  string(in.Performance),
		WasCorrect:   in.WasCorrect,
		NextReviewAt: in.NextReviewAt,
		IntervalDays: in.IntervalDays,
		Repetitions:  in.Repetitions,
		Status:       string(in.Status),
		Recap: UnitRecap{
			UnitID:    in.Recap.UnitID,
			Topic:     in.Recap.Topic,
			Content:   in.Recap.Content,
			KeyPoints: in.Recap.KeyPoints,
		},
	}
}
