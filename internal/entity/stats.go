package entity

import "math"

// OverallStats aggregates a learner's progress across all records.
// Accuracy is a percentage rounded to one decimal.
type OverallStats struct {
	New             int64
	Learning        int64
	Learned         int64
	Mastered        int64
	TodayReview     int64
	Overdue         int64
	TotalAttempts   int64
	CorrectAttempts int64
	Accuracy        float64
}

// TodayStats covers the current UTC calendar day.
type TodayStats struct {
	Reviews  int64
	Correct  int64
	Accuracy float64
}

// LearnerStats is the full statistics payload. Streak counts
// consecutive UTC days with at least one review, ending today or, when
// today has none yet, yesterday.
type LearnerStats struct {
	Overall OverallStats
	Today   TodayStats
	Streak  int
}

// AccuracyPercent returns 100*correct/total rounded to one decimal,
// 0 when total is 0.
func AccuracyPercent(correct, total int64) float64 {
	if total == 0 {
		return 0
	}
	pct := float64(correct) / float64(total) * 100
	return math.Round(pct*10) / 10
}
