package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

const progressColumns = `id, learner_id, unit_id, status, next_review_at, last_review_at,
	interval_days, ease_factor, repetitions, incorrect_count, total_attempts,
	correct_attempts, created_at, updated_at`

type progressRepository struct {
	pool *pgxpool.Pool
}

// NewProgressRepository constructs a pgx-backed progress repository.
func NewProgressRepository(pool *pgxpool.Pool) repository.ProgressRepository {
	return &progressRepository{pool: pool}
}

func (r *progressRepository) Create(ctx context.Context, rec *entity.ProgressRecord) (*entity.ProgressRecord, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO progress_records (
			learner_id, unit_id, status, next_review_at, last_review_at,
			interval_days, ease_factor, repetitions, incorrect_count,
			total_attempts, correct_attempts, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		RETURNING `+progressColumns,
		rec.LearnerID, rec.UnitID, rec.Status, rec.NextReviewAt, rec.LastReviewAt,
		rec.IntervalDays, rec.EaseFactor, rec.Repetitions, rec.IncorrectCount,
		rec.TotalAttempts, rec.CorrectAttempts, rec.CreatedAt, rec.UpdatedAt,
	)
	created, err := scanProgress(row)
	if err != nil {
		return nil, translatePgError("create progress record", err)
	}
	return created, nil
}

func (r *progressRepository) BulkCreate(ctx context.Context, recs []*entity.ProgressRecord) error {
	if len(recs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(`
			INSERT INTO progress_records (
				learner_id, unit_id, status, next_review_at, last_review_at,
				interval_days, ease_factor, repetitions, incorrect_count,
				total_attempts, correct_attempts, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
			ON CONFLICT (learner_id, unit_id) DO NOTHING`,
			rec.LearnerID, rec.UnitID, rec.Status, rec.NextReviewAt, rec.LastReviewAt,
			rec.IntervalDays, rec.EaseFactor, rec.Repetitions, rec.IncorrectCount,
			rec.TotalAttempts, rec.CorrectAttempts, rec.CreatedAt, rec.UpdatedAt,
		)
	}
	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range recs {
		if _, err := results.Exec(); err != nil {
			return translatePgError("bulk create progress records", err)
		}
	}
	return nil
}

func (r *progressRepository) GetByID(ctx context.Context, learnerID, id int64) (*entity.ProgressRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+progressColumns+`
		FROM progress_records
		WHERE id = $1 AND learner_id = $2`, id, learnerID)
	rec, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrProgressNotFound
		}
		return nil, fmt.Errorf("get progress record: %w", err)
	}
	return rec, nil
}

func (r *progressRepository) ListDue(ctx context.Context, learnerID int64, due time.Time, limit int) ([]*entity.ProgressRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+progressColumns+`
		FROM progress_records
		WHERE learner_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at ASC, id ASC
		LIMIT $3`, learnerID, due, limit)
	if err != nil {
		return nil, fmt.Errorf("list due progress records: %w", err)
	}
	defer rows.Close()
	return scanProgressRows(rows)
}

func (r *progressRepository) ListByUnits(ctx context.Context, learnerID int64, unitIDs []int64) ([]*entity.ProgressRecord, error) {
	if len(unitIDs) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+progressColumns+`
		FROM progress_records
		WHERE learner_id = $1 AND unit_id = ANY($2)
		ORDER BY id ASC`, learnerID, unitIDs)
	if err != nil {
		return nil, fmt.Errorf("list progress records by units: %w", err)
	}
	defer rows.Close()
	return scanProgressRows(rows)
}

func (r *progressRepository) List(ctx context.Context, query *repository.ListProgressQuery) ([]*entity.ProgressRecord, int64, error) {
	var (
		where = []string{"learner_id = $1"}
		args  = []any{query.LearnerID}
	)
	if query.Status != "" {
		args = append(args, query.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if !query.DueBefore.IsZero() {
		args = append(args, query.DueBefore)
		where = append(where, fmt.Sprintf("next_review_at <= $%d", len(args)))
	}
	if !query.DueAfter.IsZero() {
		args = append(args, query.DueAfter)
		where = append(where, fmt.Sprintf("next_review_at >= $%d", len(args)))
	}
	if query.MinRepetitions > 0 {
		args = append(args, query.MinRepetitions)
		where = append(where, fmt.Sprintf("repetitions >= $%d", len(args)))
	}
	if query.MaxRepetitions > 0 {
		args = append(args, query.MaxRepetitions)
		where = append(where, fmt.Sprintf("repetitions <= $%d", len(args)))
	}

	args = append(args, query.Limit())
	limitPos := len(args)
	args = append(args, query.Offset())
	offsetPos := len(args)

	sql := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM progress_records
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		progressColumns, strings.Join(where, " AND "),
		orderClause(query), limitPos, offsetPos)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list progress records: %w", err)
	}
	defer rows.Close()

	var (
		out   []*entity.ProgressRecord
		total int64
	)
	for rows.Next() {
		rec := &entity.ProgressRecord{}
		if err := rows.Scan(
			&rec.ID, &rec.LearnerID, &rec.UnitID, &rec.Status, &rec.NextReviewAt,
			&rec.LastReviewAt, &rec.IntervalDays, &rec.EaseFactor, &rec.Repetitions,
			&rec.IncorrectCount, &rec.TotalAttempts, &rec.CorrectAttempts,
			&rec.CreatedAt, &rec.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan progress record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list progress records: %w", err)
	}
	return out, total, nil
}

// ApplyReview merges the engine output and bumps the attempt counters
// in one statement so concurrent submissions never lose increments.
func (r *progressRepository) ApplyReview(ctx context.Context, learnerID, id int64, upd repository.ReviewUpdate) (*entity.ProgressRecord, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE progress_records SET
			status = $3,
			next_review_at = $4,
			last_review_at = $5,
			interval_days = $6,
			ease_factor = $7,
			repetitions = $8,
			total_attempts = total_attempts + 1,
			correct_attempts = correct_attempts + CASE WHEN $9 THEN 1 ELSE 0 END,
			incorrect_count = incorrect_count + CASE WHEN $9 THEN 0 ELSE 1 END,
			updated_at = $5
		WHERE id = $1 AND learner_id = $2
		RETURNING `+progressColumns,
		id, learnerID, upd.Status, upd.NextReviewAt, upd.LastReviewAt,
		upd.IntervalDays, upd.EaseFactor, upd.Repetitions, upd.Correct,
	)
	rec, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrProgressNotFound
		}
		return nil, fmt.Errorf("apply review: %w", err)
	}
	return rec, nil
}

func (r *progressRepository) CountByStatus(ctx context.Context, learnerID int64) (map[entity.Status]int64, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*)
		FROM progress_records
		WHERE learner_id = $1
		GROUP BY status`, learnerID)
	if err != nil {
		return nil, fmt.Errorf("count progress by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[entity.Status]int64)
	for rows.Next() {
		var (
			status entity.Status
			n      int64
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *progressRepository) CountDueBetween(ctx context.Context, learnerID int64, from, to time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM progress_records
		WHERE learner_id = $1 AND next_review_at >= $2 AND next_review_at < $3`,
		learnerID, from, to).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count due between: %w", err)
	}
	return n, nil
}

func (r *progressRepository) CountDueBefore(ctx context.Context, learnerID int64, before time.Time) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM progress_records
		WHERE learner_id = $1 AND next_review_at < $2`,
		learnerID, before).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count overdue: %w", err)
	}
	return n, nil
}

func (r *progressRepository) AttemptTotals(ctx context.Context, learnerID int64) (int64, int64, error) {
	var total, correct int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_attempts), 0), COALESCE(SUM(correct_attempts), 0)
		FROM progress_records
		WHERE learner_id = $1`, learnerID).Scan(&total, &correct)
	if err != nil {
		return 0, 0, fmt.Errorf("sum attempt totals: %w", err)
	}
	return total, correct, nil
}

// ListStatusDivergent mirrors the engine's status recomputation rule in
// SQL. Rows it returns are audit findings, never rewritten.
func (r *progressRepository) ListStatusDivergent(ctx context.Context, limit int) ([]*entity.ProgressRecord, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+progressColumns+`
		FROM progress_records
		WHERE status <> 'new'
		  AND last_review_at IS NOT NULL
		  AND status <> CASE
			WHEN repetitions >= 4 AND interval_days >= 21 THEN 'mastered'
			WHEN repetitions >= 2 THEN 'learned'
			ELSE 'learning'
		  END
		ORDER BY updated_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list status divergent: %w", err)
	}
	defer rows.Close()
	return scanProgressRows(rows)
}

func orderClause(query *repository.ListProgressQuery) string {
	primary := query.PrimaryKey
	if primary == "" {
		primary = "next_review_at"
	}
	clause := primary + direction(query.PrimaryDesc)
	if query.SecondaryKey != "" && query.SecondaryKey != primary {
		clause += ", " + query.SecondaryKey + direction(query.SecondaryDesc)
	}
	return clause + ", id ASC"
}

func direction(desc bool) string {
	if desc {
		return " DESC"
	}
	return " ASC"
}

func scanProgress(row pgx.Row) (*entity.ProgressRecord, error) {
	rec := &entity.ProgressRecord{}
	err := row.Scan(
		&rec.ID, &rec.LearnerID, &rec.UnitID, &rec.Status, &rec.NextReviewAt,
		&rec.LastReviewAt, &rec.IntervalDays, &rec.EaseFactor, &rec.Repetitions,
		&rec.IncorrectCount, &rec.TotalAttempts, &rec.CorrectAttempts,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func scanProgressRows(rows pgx.Rows) ([]*entity.ProgressRecord, error) {
	var out []*entity.ProgressRecord
	for rows.Next() {
		rec, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress records: %w", err)
	}
	return out, nil
}
