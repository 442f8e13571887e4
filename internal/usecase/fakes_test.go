package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
	"github.com/eslsoft/revise/internal/srs"
)

type fakeProgressRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.ProgressRecord
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{items: make(map[int64]*entity.ProgressRecord)}
}

func (r *fakeProgressRepo) Create(ctx context.Context, rec *entity.ProgressRecord) (*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.lookupLocked(rec.LearnerID, rec.UnitID); ok {
		return nil, entity.ErrDuplicateProgress
	}
	r.seq++
	copy := cloneProgress(rec)
	copy.ID = r.seq
	r.items[copy.ID] = copy
	return cloneProgress(copy), nil
}

func (r *fakeProgressRepo) BulkCreate(ctx context.Context, recs []*entity.ProgressRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range recs {
		if _, ok := r.lookupLocked(rec.LearnerID, rec.UnitID); ok {
			continue
		}
		r.seq++
		copy := cloneProgress(rec)
		copy.ID = r.seq
		r.items[copy.ID] = copy
	}
	return nil
}

func (r *fakeProgressRepo) GetByID(ctx context.Context, learnerID, id int64) (*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok || item.LearnerID != learnerID {
		return nil, entity.ErrProgressNotFound
	}
	return cloneProgress(item), nil
}

func (r *fakeProgressRepo) ListDue(ctx context.Context, learnerID int64, due time.Time, limit int) ([]*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.ProgressRecord
	for _, item := range r.items {
		if item.LearnerID == learnerID && !item.NextReviewAt.After(due) {
			out = append(out, cloneProgress(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NextReviewAt.Equal(out[j].NextReviewAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].NextReviewAt.Before(out[j].NextReviewAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeProgressRepo) ListByUnits(ctx context.Context, learnerID int64, unitIDs []int64) ([]*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[int64]bool, len(unitIDs))
	for _, id := range unitIDs {
		wanted[id] = true
	}
	var out []*entity.ProgressRecord
	for _, item := range r.items {
		if item.LearnerID == learnerID && wanted[item.UnitID] {
			out = append(out, cloneProgress(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeProgressRepo) List(ctx context.Context, query *repository.ListProgressQuery) ([]*entity.ProgressRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.ProgressRecord
	for _, item := range r.items {
		if item.LearnerID != query.LearnerID {
			continue
		}
		if query.Status != "" && string(item.Status) != query.Status {
			continue
		}
		if !query.DueBefore.IsZero() && item.NextReviewAt.After(query.DueBefore) {
			continue
		}
		out = append(out, cloneProgress(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeProgressRepo) ApplyReview(ctx context.Context, learnerID, id int64, upd repository.ReviewUpdate) (*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[id]
	if !ok || item.LearnerID != learnerID {
		return nil, entity.ErrProgressNotFound
	}
	item.IntervalDays = upd.IntervalDays
	item.EaseFactor = upd.EaseFactor
	item.Repetitions = upd.Repetitions
	item.NextReviewAt = upd.NextReviewAt
	last := upd.LastReviewAt
	item.LastReviewAt = &last
	item.Status = upd.Status
	item.TotalAttempts++
	if upd.Correct {
		item.CorrectAttempts++
	} else {
		item.IncorrectCount++
	}
	item.UpdatedAt = upd.LastReviewAt
	return cloneProgress(item), nil
}

func (r *fakeProgressRepo) CountByStatus(ctx context.Context, learnerID int64) (map[entity.Status]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[entity.Status]int64)
	for _, item := range r.items {
		if item.LearnerID == learnerID {
			counts[item.Status]++
		}
	}
	return counts, nil
}

func (r *fakeProgressRepo) CountDueBetween(ctx context.Context, learnerID int64, from, to time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, item := range r.items {
		if item.LearnerID == learnerID && !item.NextReviewAt.Before(from) && item.NextReviewAt.Before(to) {
			n++
		}
	}
	return n, nil
}

func (r *fakeProgressRepo) CountDueBefore(ctx context.Context, learnerID int64, before time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, item := range r.items {
		if item.LearnerID == learnerID && item.NextReviewAt.Before(before) {
			n++
		}
	}
	return n, nil
}

func (r *fakeProgressRepo) AttemptTotals(ctx context.Context, learnerID int64) (int64, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total, correct int64
	for _, item := range r.items {
		if item.LearnerID == learnerID {
			total += int64(item.TotalAttempts)
			correct += int64(item.CorrectAttempts)
		}
	}
	return total, correct, nil
}

func (r *fakeProgressRepo) ListStatusDivergent(ctx context.Context, limit int) ([]*entity.ProgressRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.ProgressRecord
	for _, item := range r.items {
		if item.Status == entity.StatusNew || item.LastReviewAt == nil {
			continue
		}
		if item.Status != srs.ExpectedStatus(item.Repetitions, item.IntervalDays) {
			out = append(out, cloneProgress(item))
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeProgressRepo) lookupLocked(learnerID, unitID int64) (*entity.ProgressRecord, bool) {
	for _, item := range r.items {
		if item.LearnerID == learnerID && item.UnitID == unitID {
			return item, true
		}
	}
	return nil, false
}

func cloneProgress(src *entity.ProgressRecord) *entity.ProgressRecord {
	if src == nil {
		return nil
	}
	copy := *src
	if src.LastReviewAt != nil {
		last := *src.LastReviewAt
		copy.LastReviewAt = &last
	}
	return &copy
}

type fakeKnowledgeRepo struct {
	units    []*entity.KnowledgeUnit
	progress *fakeProgressRepo
}

func (r *fakeKnowledgeRepo) GetUnits(ctx context.Context, ids []int64) ([]*entity.KnowledgeUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []*entity.KnowledgeUnit
	for _, unit := range r.units {
		if wanted[unit.ID] {
			u := *unit
			out = append(out, &u)
		}
	}
	return out, nil
}

func (r *fakeKnowledgeRepo) ListUnassigned(ctx context.Context, learnerID int64, limit int) ([]*entity.KnowledgeUnit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.progress.mu.RLock()
	defer r.progress.mu.RUnlock()
	var out []*entity.KnowledgeUnit
	for _, unit := range r.units {
		if _, ok := r.progress.lookupLocked(learnerID, unit.ID); ok {
			continue
		}
		u := *unit
		out = append(out, &u)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeExerciseRepo struct {
	exercises []entity.Exercise
}

func (r *fakeExerciseRepo) ListByIDs(ctx context.Context, ids []int64, typeFilter *entity.ExerciseType) ([]entity.Exercise, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var out []entity.Exercise
	for _, ex := range r.exercises {
		if !wanted[ex.ID] {
			continue
		}
		if typeFilter != nil && ex.Type != *typeFilter {
			continue
		}
		out = append(out, ex)
	}
	return out, nil
}

type fakeReviewLogRepo struct {
	mu   sync.Mutex
	logs []entity.ReviewLog
	err  error
}

func (r *fakeReviewLogRepo) Append(ctx context.Context, log *entity.ReviewLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeReviewLogRepo) DayStats(ctx context.Context, learnerID int64, from, to time.Time) (repository.DayActivity, error) {
	if err := ctx.Err(); err != nil {
		return repository.DayActivity{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := repository.DayActivity{Day: from}
	for _, log := range r.logs {
		if log.LearnerID != learnerID || log.ReviewedAt.Before(from) || !log.ReviewedAt.Before(to) {
			continue
		}
		out.Reviews++
		if log.Correct {
			out.Correct++
		}
	}
	return out, nil
}

func (r *fakeReviewLogRepo) RecentDays(ctx context.Context, learnerID int64, limit int) ([]repository.DayActivity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	byDay := make(map[time.Time]*repository.DayActivity)
	for _, log := range r.logs {
		if log.LearnerID != learnerID {
			continue
		}
		day := time.Date(log.ReviewedAt.Year(), log.ReviewedAt.Month(), log.ReviewedAt.Day(), 0, 0, 0, 0, time.UTC)
		act, ok := byDay[day]
		if !ok {
			act = &repository.DayActivity{Day: day}
			byDay[day] = act
		}
		act.Reviews++
		if log.Correct {
			act.Correct++
		}
	}
	var out []repository.DayActivity
	for _, act := range byDay {
		out = append(out, *act)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.After(out[j].Day) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
