package repository

import (
	"context"
	"time"

	"github.com/eslsoft/revise/internal/entity"
)

// DayActivity summarises one UTC calendar day of reviews.
type DayActivity struct {
	Day     time.Time
	Reviews int64
	Correct int64
}

// ReviewLogRepository persists the append-only review history.
type ReviewLogRepository interface {
	Append(ctx context.Context, log *entity.ReviewLog) error
	// DayStats aggregates reviews within [from, to).
	DayStats(ctx context.Context, learnerID int64, from, to time.Time) (DayActivity, error)
	// RecentDays returns per-day activity for the most recent active
	// days, newest first, capped at limit. Days without reviews are
	// absent.
	RecentDays(ctx context.Context, learnerID int64, limit int) ([]DayActivity, error)
}
