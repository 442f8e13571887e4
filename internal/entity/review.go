package entity

import "time"

// ReviewLog is one append-only entry per submitted answer. Daily
// statistics and the streak are computed from these entries; progress
// records alone cannot reconstruct per-day history.
type ReviewLog struct {
	ID         int64
	LearnerID  int64
	ProgressID int64
	UnitID     int64
	Signal     PerformanceSignal
	Correct    bool
	ReviewedAt time.Time
}
