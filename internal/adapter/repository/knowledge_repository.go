package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
)

type knowledgeRepository struct {
	pool *pgxpool.Pool
}

// NewKnowledgeRepository constructs a read-only view over the
// externally-owned knowledge content tables.
func NewKnowledgeRepository(pool *pgxpool.Pool) repository.KnowledgeRepository {
	return &knowledgeRepository{pool: pool}
}

const unitColumns = `u.id, u.topic, u.sub_topic, u.content, u.key_points, u.tags`

func (r *knowledgeRepository) GetUnits(ctx context.Context, ids []int64) ([]*entity.KnowledgeUnit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+unitColumns+`,
			COALESCE(array_agg(e.id) FILTER (WHERE e.id IS NOT NULL), '{}') AS exercise_ids
		FROM knowledge_units u
		LEFT JOIN exercises e ON e.unit_id = u.id
		WHERE u.id = ANY($1)
		GROUP BY u.id
		ORDER BY u.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("get knowledge units: %w", err)
	}
	defer rows.Close()
	return scanUnits(rows)
}

// ListUnassigned picks units the learner has no progress record for.
// Order is by unit id, the closest thing to authoring order the
// content tables offer.
func (r *knowledgeRepository) ListUnassigned(ctx context.Context, learnerID int64, limit int) ([]*entity.KnowledgeUnit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+unitColumns+`,
			COALESCE(array_agg(e.id) FILTER (WHERE e.id IS NOT NULL), '{}') AS exercise_ids
		FROM knowledge_units u
		LEFT JOIN exercises e ON e.unit_id = u.id
		WHERE NOT EXISTS (
			SELECT 1 FROM progress_records p
			WHERE p.learner_id = $1 AND p.unit_id = u.id
		)
		GROUP BY u.id
		ORDER BY u.id
		LIMIT $2`, learnerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list unassigned units: %w", err)
	}
	defer rows.Close()
	return scanUnits(rows)
}

func scanUnits(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*entity.KnowledgeUnit, error) {
	var out []*entity.KnowledgeUnit
	for rows.Next() {
		unit := &entity.KnowledgeUnit{}
		if err := rows.Scan(
			&unit.ID, &unit.Topic, &unit.SubTopic, &unit.Content,
			&unit.KeyPoints, &unit.Tags, &unit.ExerciseIDs,
		); err != nil {
			return nil, fmt.Errorf("scan knowledge unit: %w", err)
		}
		out = append(out, unit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate knowledge units: %w", err)
	}
	return out, nil
}

type exerciseRepository struct {
	pool *pgxpool.Pool
}

// NewExerciseRepository constructs a read-only exercise lookup.
func NewExerciseRepository(pool *pgxpool.Pool) repository.ExerciseRepository {
	return &exerciseRepository{pool: pool}
}

func (r *exerciseRepository) ListByIDs(ctx context.Context, ids []int64, typeFilter *entity.ExerciseType) ([]entity.Exercise, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	sql := `
		SELECT id, unit_id, type, source, question_text, options,
			correct_answer, explanation, difficulty
		FROM exercises
		WHERE id = ANY($1)`
	args := []any{ids}
	if typeFilter != nil {
		sql += ` AND type = $2`
		args = append(args, *typeFilter)
	}
	sql += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var out []entity.Exercise
	for rows.Next() {
		var ex entity.Exercise
		if err := rows.Scan(
			&ex.ID, &ex.UnitID, &ex.Type, &ex.Source, &ex.QuestionText,
			&ex.Options, &ex.CorrectAnswer, &ex.Explanation, &ex.Difficulty,
		); err != nil {
			return nil, fmt.Errorf("scan exercise: %w", err)
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercises: %w", err)
	}
	return out, nil
}
