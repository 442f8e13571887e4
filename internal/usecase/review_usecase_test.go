package usecase

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/revise/internal/entity"
)

var reviewNow = time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

func discardLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newReviewFixture(units []*entity.KnowledgeUnit) (*reviewUsecase, *fakeProgressRepo, *fakeReviewLogRepo) {
	progress := newFakeProgressRepo()
	knowledge := &fakeKnowledgeRepo{units: units, progress: progress}
	logs := &fakeReviewLogRepo{}

	uc := NewReviewUsecase(progress, knowledge, logs, discardLogger()).(*reviewUsecase)
	uc.clock = func() time.Time { return reviewNow }
	return uc, progress, logs
}

func seedRecord(t *testing.T, progress *fakeProgressRepo, learnerID int64, mutate func(*entity.ProgressRecord)) *entity.ProgressRecord {
	t.Helper()
	rec := entity.NewProgressRecord(learnerID, 1, reviewNow.AddDate(0, 0, -10))
	if mutate != nil {
		mutate(rec)
	}
	created, err := progress.Create(context.Background(), rec)
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return created
}

func TestSubmitAnswerScenarioCorrectEasy(t *testing.T) {
	units := []*entity.KnowledgeUnit{{ID: 1, Topic: "anatomy", Content: "the heart", KeyPoints: []string{"four chambers"}}}
	uc, progress, logs := newReviewFixture(units)

	rec := seedRecord(t, progress, 42, func(r *entity.ProgressRecord) {
		r.Status = entity.StatusLearning
		r.IntervalDays = 3
		r.Repetitions = 2
		r.EaseFactor = 2.5
		r.NextReviewAt = reviewNow.AddDate(0, 0, -1)
	})

	got, err := uc.SubmitAnswer(context.Background(), 42, rec.ID, entity.SignalCorrectEasy)
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	if got.IntervalDays != 8 {
		t.Errorf("interval = %d, want 8", got.IntervalDays)
	}
	if got.Repetitions != 3 {
		t.Errorf("repetitions = %d, want 3", got.Repetitions)
	}
	if got.Status != entity.StatusLearned {
		t.Errorf("status = %q, want %q", got.Status, entity.StatusLearned)
	}
	if !got.WasCorrect {
		t.Error("WasCorrect = false, want true")
	}
	if !got.NextReviewAt.Equal(reviewNow.AddDate(0, 0, 8)) {
		t.Errorf("next review = %v, want %v", got.NextReviewAt, reviewNow.AddDate(0, 0, 8))
	}
	if got.Recap.Content != "the heart" || len(got.Recap.KeyPoints) != 1 {
		t.Errorf("recap = %+v, want unit content and key points", got.Recap)
	}

	stored, _ := progress.GetByID(context.Background(), 42, rec.ID)
	if stored.EaseFactor != 2.65 {
		t.Errorf("persisted ease factor = %v, want 2.65", stored.EaseFactor)
	}
	if stored.TotalAttempts != 1 || stored.CorrectAttempts != 1 || stored.IncorrectCount != 0 {
		t.Errorf("counters = (%d, %d, %d), want (1, 1, 0)",
			stored.TotalAttempts, stored.CorrectAttempts, stored.IncorrectCount)
	}
	if stored.LastReviewAt == nil || !stored.LastReviewAt.Equal(reviewNow) {
		t.Errorf("last review = %v, want %v", stored.LastReviewAt, reviewNow)
	}

	if len(logs.logs) != 1 {
		t.Fatalf("expected 1 review log entry, got %d", len(logs.logs))
	}
	if logs.logs[0].Signal != entity.SignalCorrectEasy || !logs.logs[0].Correct {
		t.Errorf("log entry = %+v, want correct_easy/correct", logs.logs[0])
	}
}

func TestSubmitAnswerIncorrectDemotesMastered(t *testing.T) {
	units := []*entity.KnowledgeUnit{{ID: 1, Content: "c"}}
	uc, progress, _ := newReviewFixture(units)

	rec := seedRecord(t, progress, 8, func(r *entity.ProgressRecord) {
		r.Status = entity.StatusMastered
		r.IntervalDays = 25
		r.Repetitions = 5
		r.EaseFactor = 2.5
	})

	got, err := uc.SubmitAnswer(context.Background(), 8, rec.ID, entity.SignalIncorrect)
	if err != nil {
		t.Fatalf("SubmitAnswer returned error: %v", err)
	}

	if got.IntervalDays != 1 || got.Repetitions != 0 {
		t.Errorf("(interval, reps) = (%d, %d), want (1, 0)", got.IntervalDays, got.Repetitions)
	}
	if got.Status != entity.StatusLearning {
		t.Errorf("status = %q, want %q", got.Status, entity.StatusLearning)
	}
	if got.WasCorrect {
		t.Error("WasCorrect = true, want false")
	}

	stored, _ := progress.GetByID(context.Background(), 8, rec.ID)
	if stored.EaseFactor != 2.3 {
		t.Errorf("ease factor = %v, want 2.3", stored.EaseFactor)
	}
	if stored.IncorrectCount != 1 || stored.CorrectAttempts != 0 || stored.TotalAttempts != 1 {
		t.Errorf("counters = (%d, %d, %d), want (1, 0, 1)",
			stored.IncorrectCount, stored.CorrectAttempts, stored.TotalAttempts)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	uc, progress, _ := newReviewFixture(nil)
	rec := seedRecord(t, progress, 4, nil)

	if _, err := uc.SubmitAnswer(context.Background(), 0, rec.ID, entity.SignalIncorrect); !errors.Is(err, entity.ErrInvalidLearner) {
		t.Errorf("expected ErrInvalidLearner, got %v", err)
	}
	if _, err := uc.SubmitAnswer(context.Background(), 4, 0, entity.SignalIncorrect); !errors.Is(err, entity.ErrInvalidProgressID) {
		t.Errorf("expected ErrInvalidProgressID, got %v", err)
	}
	if _, err := uc.SubmitAnswer(context.Background(), 4, rec.ID, entity.PerformanceSignal("great")); !errors.Is(err, entity.ErrInvalidSignal) {
		t.Errorf("expected ErrInvalidSignal, got %v", err)
	}

	// The invalid signal must never reach the store.
	stored, _ := progress.GetByID(context.Background(), 4, rec.ID)
	if stored.TotalAttempts != 0 {
		t.Errorf("total attempts = %d, want 0", stored.TotalAttempts)
	}
}

func TestSubmitAnswerForeignRecordLooksAbsent(t *testing.T) {
	uc, progress, _ := newReviewFixture(nil)
	rec := seedRecord(t, progress, 4, nil)

	_, errForeign := uc.SubmitAnswer(context.Background(), 5, rec.ID, entity.SignalIncorrect)
	_, errMissing := uc.SubmitAnswer(context.Background(), 5, rec.ID+999, entity.SignalIncorrect)

	if !errors.Is(errForeign, entity.ErrProgressNotFound) {
		t.Errorf("foreign record: expected ErrProgressNotFound, got %v", errForeign)
	}
	if !errors.Is(errMissing, entity.ErrProgressNotFound) {
		t.Errorf("missing record: expected ErrProgressNotFound, got %v", errMissing)
	}
}

func TestSubmitAnswerLogFailureIsNotFatal(t *testing.T) {
	units := []*entity.KnowledgeUnit{{ID: 1, Content: "c"}}
	uc, progress, logs := newReviewFixture(units)
	logs.err = errors.New("log store down")

	rec := seedRecord(t, progress, 2, nil)
	if _, err := uc.SubmitAnswer(context.Background(), 2, rec.ID, entity.SignalCorrectHard); err != nil {
		t.Fatalf("SubmitAnswer should survive log append failure, got %v", err)
	}

	stored, _ := progress.GetByID(context.Background(), 2, rec.ID)
	if stored.TotalAttempts != 1 {
		t.Errorf("scheduling update must still apply, attempts = %d", stored.TotalAttempts)
	}
}
