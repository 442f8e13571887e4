package usecase

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/repository"
	"github.com/eslsoft/revise/internal/selector"
	"github.com/eslsoft/revise/internal/srs"
)

// SessionSize is the fixed target size of a study session.
const SessionSize = 10

// SessionUsecase assembles bounded study sessions.
type SessionUsecase interface {
	StartSession(ctx context.Context, learnerID int64) (*entity.Session, error)
}

// NewSessionUsecase wires the repositories and selector with default
// clock and randomness.
func NewSessionUsecase(
	progress repository.ProgressRepository,
	knowledge repository.KnowledgeRepository,
	exercises repository.ExerciseRepository,
	sel *selector.Selector,
) SessionUsecase {
	return &sessionUsecase{
		progress:  progress,
		knowledge: knowledge,
		exercises: exercises,
		sel:       sel,
		clock:     func() time.Time { return time.Now().UTC() },
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type sessionUsecase struct {
	progress  repository.ProgressRepository
	knowledge repository.KnowledgeRepository
	exercises repository.ExerciseRepository
	sel       *selector.Selector
	clock     func() time.Time
	rng       *rand.Rand
}

// StartSession builds one batch of at most SessionSize items: due
// records first, then brand-new knowledge units backfilled with freshly
// created progress records. The final list is shuffled so item order
// reveals nothing about due-vs-new origin. Any store error aborts the
// call; no partial session is returned.
func (u *sessionUsecase) StartSession(ctx context.Context, learnerID int64) (*entity.Session, error) {
	if learnerID <= 0 {
		return nil, entity.ErrInvalidLearner
	}
	now := u.clock()

	working, err := u.progress.ListDue(ctx, learnerID, now, SessionSize)
	if err != nil {
		return nil, err
	}
	reviewCount := len(working)

	newCount := 0
	if remainder := SessionSize - len(working); remainder > 0 {
		fresh, err := u.backfillNewUnits(ctx, learnerID, remainder, now)
		if err != nil {
			return nil, err
		}
		working = append(working, fresh...)
		newCount = len(fresh)
	}

	items, err := u.assembleItems(ctx, working)
	if err != nil {
		return nil, err
	}

	u.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})

	return &entity.Session{
		ID:          uuid.NewString(),
		SessionSize: SessionSize,
		ReviewCount: reviewCount,
		NewCount:    newCount,
		Items:       items,
		CreatedAt:   now,
	}, nil
}

// backfillNewUnits creates progress records for units the learner has
// never seen. The bulk insert skips already-existing pairs, so a call
// that loses a creation race simply adopts the surviving records on the
// reselect.
func (u *sessionUsecase) backfillNewUnits(ctx context.Context, learnerID int64, limit int, now time.Time) ([]*entity.ProgressRecord, error) {
	units, err := u.knowledge.ListUnassigned(ctx, learnerID, limit)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, nil
	}

	recs := lo.Map(units, func(unit *entity.KnowledgeUnit, _ int) *entity.ProgressRecord {
		return entity.NewProgressRecord(learnerID, unit.ID, now)
	})
	if err := u.progress.BulkCreate(ctx, recs); err != nil {
		return nil, err
	}

	unitIDs := lo.Map(units, func(unit *entity.KnowledgeUnit, _ int) int64 { return unit.ID })
	return u.progress.ListByUnits(ctx, learnerID, unitIDs)
}

func (u *sessionUsecase) assembleItems(ctx context.Context, recs []*entity.ProgressRecord) ([]entity.SessionItem, error) {
	if len(recs) == 0 {
		return []entity.SessionItem{}, nil
	}

	unitIDs := lo.Map(recs, func(rec *entity.ProgressRecord, _ int) int64 { return rec.UnitID })
	units, err := u.knowledge.GetUnits(ctx, unitIDs)
	if err != nil {
		return nil, err
	}
	byID := lo.KeyBy(units, func(unit *entity.KnowledgeUnit) int64 { return unit.ID })

	items := make([]entity.SessionItem, 0, len(recs))
	for _, rec := range recs {
		unit, ok := byID[rec.UnitID]
		if !ok {
			// Unit content withdrawn externally; nothing to present.
			continue
		}
		stage := srs.StageOf(rec)
		ex, err := u.pickExercise(ctx, stage, rec.ErrorRate(), unit)
		if err != nil {
			return nil, err
		}
		items = append(items, entity.SessionItem{
			ProgressID: rec.ID,
			Unit:       *unit,
			Exercise:   ex,
			SRS:        rec.Snapshot(),
			Stage:      stage,
		})
	}
	return items, nil
}

// pickExercise runs the explicit two-stage query: the typed pool for
// the chosen type first, the unit's full pool when that comes back
// empty. A unit with no exercises at all yields a nil exercise.
func (u *sessionUsecase) pickExercise(ctx context.Context, stage entity.Stage, errorRate float64, unit *entity.KnowledgeUnit) (*entity.Exercise, error) {
	if len(unit.ExerciseIDs) == 0 {
		return nil, nil
	}

	typ := u.sel.ChooseType(stage, errorRate)
	pool, err := u.exercises.ListByIDs(ctx, unit.ExerciseIDs, &typ)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		pool, err = u.exercises.ListByIDs(ctx, unit.ExerciseIDs, nil)
		if err != nil {
			return nil, err
		}
	}
	return u.sel.ChooseExercise(stage, errorRate, pool), nil
}
