package usecase

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/eslsoft/revise/internal/entity"
	"github.com/eslsoft/revise/internal/selector"
)

var sessionNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func newSessionFixture(units []*entity.KnowledgeUnit, exercises []entity.Exercise) (*sessionUsecase, *fakeProgressRepo) {
	progress := newFakeProgressRepo()
	knowledge := &fakeKnowledgeRepo{units: units, progress: progress}
	exRepo := &fakeExerciseRepo{exercises: exercises}
	sel := selector.New(rand.New(rand.NewSource(7)))

	uc := NewSessionUsecase(progress, knowledge, exRepo, sel).(*sessionUsecase)
	uc.clock = func() time.Time { return sessionNow }
	uc.rng = rand.New(rand.NewSource(7))
	return uc, progress
}

func unit(id int64, exerciseIDs ...int64) *entity.KnowledgeUnit {
	return &entity.KnowledgeUnit{
		ID:          id,
		Topic:       "topic",
		Content:     "content",
		ExerciseIDs: exerciseIDs,
	}
}

func TestStartSessionAllNewLearner(t *testing.T) {
	units := []*entity.KnowledgeUnit{unit(1), unit(2), unit(3)}
	uc, progress := newSessionFixture(units, nil)

	sess, err := uc.StartSession(context.Background(), 42)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}

	if len(sess.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(sess.Items))
	}
	if sess.ReviewCount != 0 || sess.NewCount != 3 {
		t.Errorf("counts = (review=%d, new=%d), want (0, 3)", sess.ReviewCount, sess.NewCount)
	}
	if sess.SessionSize != SessionSize {
		t.Errorf("session size = %d, want %d", sess.SessionSize, SessionSize)
	}
	if sess.ID == "" {
		t.Error("expected a session id")
	}

	for _, item := range sess.Items {
		if item.Stage != entity.StageNew {
			t.Errorf("item stage = %q, want %q", item.Stage, entity.StageNew)
		}
		if item.SRS.IntervalDays != 0 || item.SRS.Repetitions != 0 || item.SRS.EaseFactor != 2.5 {
			t.Errorf("fresh record snapshot = %+v, want interval=0 reps=0 ease=2.5", item.SRS)
		}
		if item.ProgressID == 0 {
			t.Error("expected a persisted progress id on backfilled item")
		}
	}

	if got := len(progress.items); got != 3 {
		t.Errorf("expected 3 persisted records, got %d", got)
	}
}

func TestStartSessionNeverExceedsTargetSize(t *testing.T) {
	var units []*entity.KnowledgeUnit
	for i := int64(1); i <= 25; i++ {
		units = append(units, unit(i))
	}
	uc, _ := newSessionFixture(units, nil)

	sess, err := uc.StartSession(context.Background(), 1)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if len(sess.Items) != SessionSize {
		t.Errorf("expected %d items, got %d", SessionSize, len(sess.Items))
	}
}

func TestStartSessionDueFirstThenBackfill(t *testing.T) {
	units := []*entity.KnowledgeUnit{unit(1), unit(2), unit(3), unit(4)}
	uc, progress := newSessionFixture(units, nil)

	// Two records already due.
	for _, unitID := range []int64{1, 2} {
		rec := entity.NewProgressRecord(9, unitID, sessionNow.AddDate(0, 0, -3))
		rec.Status = entity.StatusLearning
		rec.Repetitions = 1
		rec.IntervalDays = 2
		if _, err := progress.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	sess, err := uc.StartSession(context.Background(), 9)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}

	if sess.ReviewCount != 2 {
		t.Errorf("review count = %d, want 2", sess.ReviewCount)
	}
	if sess.NewCount != 2 {
		t.Errorf("new count = %d, want 2", sess.NewCount)
	}
	if len(sess.Items) != 4 {
		t.Errorf("expected 4 items, got %d", len(sess.Items))
	}
}

func TestStartSessionSkipsBackfillWhenFull(t *testing.T) {
	units := []*entity.KnowledgeUnit{unit(100)}
	uc, progress := newSessionFixture(units, nil)

	for i := int64(1); i <= 12; i++ {
		rec := entity.NewProgressRecord(5, i, sessionNow.AddDate(0, 0, -int(i)))
		if _, err := progress.Create(context.Background(), rec); err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	sess, err := uc.StartSession(context.Background(), 5)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if sess.NewCount != 0 {
		t.Errorf("new count = %d, want 0", sess.NewCount)
	}
	if len(sess.Items) != SessionSize {
		t.Errorf("expected %d items, got %d", SessionSize, len(sess.Items))
	}
	// Due ordering: the most overdue records fill the session.
	if _, ok := progress.lookupLocked(5, 100); ok {
		t.Error("no record should be created for unit 100")
	}
}

func TestStartSessionIdempotentCreation(t *testing.T) {
	units := []*entity.KnowledgeUnit{unit(1), unit(2)}
	uc, progress := newSessionFixture(units, nil)

	if _, err := uc.StartSession(context.Background(), 7); err != nil {
		t.Fatalf("first StartSession: %v", err)
	}
	if _, err := uc.StartSession(context.Background(), 7); err != nil {
		t.Fatalf("second StartSession: %v", err)
	}

	seen := make(map[int64]int)
	for _, rec := range progress.items {
		if rec.LearnerID == 7 {
			seen[rec.UnitID]++
		}
	}
	for unitID, n := range seen {
		if n != 1 {
			t.Errorf("unit %d has %d records, want 1", unitID, n)
		}
	}
}

// racingKnowledgeRepo reports a unit as unassigned even though a
// concurrent call has already created its record, reproducing the
// creation race window.
type racingKnowledgeRepo struct {
	fakeKnowledgeRepo
}

func (r *racingKnowledgeRepo) ListUnassigned(ctx context.Context, learnerID int64, limit int) ([]*entity.KnowledgeUnit, error) {
	out := make([]*entity.KnowledgeUnit, 0, limit)
	for _, u := range r.units {
		copy := *u
		out = append(out, &copy)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func TestStartSessionAdoptsRaceLoserRecords(t *testing.T) {
	units := []*entity.KnowledgeUnit{unit(1)}
	uc, progress := newSessionFixture(units, nil)
	uc.knowledge = &racingKnowledgeRepo{fakeKnowledgeRepo{units: units, progress: progress}}

	// The "winner" created the record first; it is not yet due.
	pre := entity.NewProgressRecord(3, 1, sessionNow)
	pre.NextReviewAt = sessionNow.Add(time.Hour)
	created, err := progress.Create(context.Background(), pre)
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}

	sess, err := uc.StartSession(context.Background(), 3)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if len(sess.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(sess.Items))
	}
	if sess.Items[0].ProgressID != created.ID {
		t.Errorf("item progress id = %d, want adopted record %d", sess.Items[0].ProgressID, created.ID)
	}
	if got := len(progress.items); got != 1 {
		t.Errorf("expected 1 record total, got %d", got)
	}
}

func TestStartSessionAttachesExercises(t *testing.T) {
	exercises := []entity.Exercise{
		{ID: 11, UnitID: 1, Type: entity.ExerciseMultipleChoice, Difficulty: entity.DifficultyEasy},
		{ID: 12, UnitID: 1, Type: entity.ExerciseTrueFalse, Difficulty: entity.DifficultyMedium},
	}
	units := []*entity.KnowledgeUnit{unit(1, 11, 12)}
	uc, _ := newSessionFixture(units, exercises)

	sess, err := uc.StartSession(context.Background(), 2)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if len(sess.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(sess.Items))
	}
	ex := sess.Items[0].Exercise
	if ex == nil {
		t.Fatal("expected an exercise on the item")
	}
	// New learner: multiple_choice typed pool, easy preferred.
	if ex.ID != 11 {
		t.Errorf("exercise id = %d, want 11", ex.ID)
	}
}

func TestStartSessionFallsBackToFullPool(t *testing.T) {
	// Only a recall exercise exists; the typed pool for a new learner
	// (multiple_choice) is empty, so the full pool is used.
	exercises := []entity.Exercise{
		{ID: 21, UnitID: 1, Type: entity.ExerciseRecall, Difficulty: entity.DifficultyHard},
	}
	units := []*entity.KnowledgeUnit{unit(1, 21)}
	uc, _ := newSessionFixture(units, exercises)

	sess, err := uc.StartSession(context.Background(), 2)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	if ex := sess.Items[0].Exercise; ex == nil || ex.ID != 21 {
		t.Errorf("expected full-pool fallback exercise 21, got %+v", ex)
	}
}

func TestStartSessionNilExerciseKeepsContent(t *testing.T) {
	units := []*entity.KnowledgeUnit{unit(1)}
	uc, _ := newSessionFixture(units, nil)

	sess, err := uc.StartSession(context.Background(), 2)
	if err != nil {
		t.Fatalf("StartSession returned error: %v", err)
	}
	item := sess.Items[0]
	if item.Exercise != nil {
		t.Errorf("expected nil exercise, got %+v", item.Exercise)
	}
	if item.Unit.Content == "" {
		t.Error("knowledge content must still be present")
	}
}

func TestStartSessionRejectsInvalidLearner(t *testing.T) {
	uc, _ := newSessionFixture(nil, nil)
	if _, err := uc.StartSession(context.Background(), 0); err != entity.ErrInvalidLearner {
		t.Errorf("expected ErrInvalidLearner, got %v", err)
	}
}
