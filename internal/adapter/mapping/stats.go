package mapping

import "github.com/eslsoft/revise/internal/entity"

// LearnerStats is the JSON shape of the statistics payload.
type LearnerStats struct {
	Overall OverallStats `json:"overall"`
	Today   TodayStats   `json:"today"`
	Streak  int          `json:"streak"`
}

type OverallStats struct {
	New             int64   `json:"new"`
	Learning        int64   `json:"learning"`
	Learned         int64   `json:"learned"`
	Mastered        int64   `json:"mastered"`
	TodayReview     int64   `json:"today_review"`
	Overdue         int64   `json:"overdue"`
	TotalAttempts   int64   `json:"total_attempts"`
	CorrectAttempts int64   `json:"correct_attempts"`
	Accuracy        float64 `json:"accuracy"`
}

type TodayStats struct {
	Reviews  int64   `json:"reviews"`
	Correct  int64   `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// FromLearnerStats converts domain statistics to their JSON shape.
func FromLearnerStats(in *entity.LearnerStats) *LearnerStats {
	return &LearnerStats{
		Overall: OverallStats{
			New:             in.Overall.New,
			Learning:        in.Overall.Learning,
			Learned:         in.Overall.Learned,
			Mastered:        in.Overall.Mastered,
			TodayReview:     in.Overall.TodayReview,
			Overdue:         in.Overall.Overdue,
			TotalAttempts:   in.Overall.TotalAttempts,
			CorrectAttempts: in.Overall.CorrectAttempts,
			Accuracy:        in.Overall.Accuracy,
		},
		Today: TodayStats{
			Reviews:  in.Today.Reviews,
			Correct:  in.Today.Correct,
			Accuracy: in.Today.Accuracy,
		},
		Streak: in.Streak,
	}
}
