package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

type reviewLogRepository struct {
	pool *pgxpool.Pool
}

// NewReviewLogRepository constructs the append-only review history store.
func NewReviewLogRepository(pool *pgxpool.Pool) repository.ReviewLogRepository {
	return &reviewLogRepository{pool: pool}
}

func (r *reviewLogRepository) Append(ctx context.Context, log *entity.ReviewLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO review_logs (learner_id, progress_id, unit_id, signal, correct, reviewed_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		log.LearnerID, log.ProgressID, log.UnitID, string(log.Signal), log.Correct, log.ReviewedAt,
	)
	if err != nil {
		return fmt.Errorf("append review log: %w", err)
	}
	return nil
}

func (r *reviewLogRepository) DayStats(ctx context.Context, learnerID int64, from, to time.Time) (repository.DayActivity, error) {
	out := repository.DayActivity{Day: from}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(CASE WHEN correct THEN 1 ELSE 0 END), 0)
		FROM review_logs
		WHERE learner_id = $1 AND reviewed_at >= $2 AND reviewed_at < $3`,
		learnerID, from, to).Scan(&out.Reviews, &out.Correct)
	if err != nil {
		return repository.DayActivity{}, fmt.Errorf("day stats: %w", err)
	}
	return out, nil
}

func (r *reviewLogRepository) RecentDays(ctx context.Context, learnerID int64, limit int) ([]repository.DayActivity, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', reviewed_at AT TIME ZONE 'UTC') AS day,
			COUNT(*),
			SUM(CASE WHEN correct THEN 1 ELSE 0 END)
		FROM review_logs
		WHERE learner_id = $1
		GROUP BY day
		ORDER BY day DESC
		LIMIT $2`, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent review days: %w", err)
	}
	defer rows.Close()

	var out []repository.DayActivity
	for rows.Next() {
		var act repository.DayActivity
		if err := rows.Scan(&act.Day, &act.Reviews, &act.Correct); err != nil {
			return nil, fmt.Errorf("scan review day: %w", err)
		}
		act.Day = act.Day.UTC()
		out = append(out, act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review days: %w", err)
	}
	return out, nil
}
