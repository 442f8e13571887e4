package repository

import (
	"context"
	"time"

	"github.com/eslsoft/revise/internal/entity"
)

// ListProgressQuery holds parameters for listing progress records.
// The fields below Pagination/FilterOrder are populated by
// filterexpr.Bind from the raw filter and order_by expressions.
type ListProgressQuery struct {
	Pagination
	FilterOrder

	LearnerID int64

	Status         string
	DueBefore      time.Time
	DueAfter       time.Time
	MinRepetitions int32
	MaxRepetitions int32

	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

// ReviewUpdate carries the scheduling fields recomputed by the SRS
// engine for one submission. Attempt counters are not part of it: the
// store increments them in the same statement so concurrent
// submissions to a record never lose counts.
type ReviewUpdate struct {
	IntervalDays int32
	EaseFactor   float64
	Repetitions  int32
	NextReviewAt time.Time
	LastReviewAt time.Time
	Status       entity.Status
	Correct      bool
}

// ProgressRepository abstracts persistence for progress records.
//
// Due comparisons use absolute UTC timestamps throughout: a record is
// due when next_review_at <= the given instant. Calendar-day windows
// appear only in the statistics queries and are expressed as
// [start, end) UTC instants by the caller.
type ProgressRepository interface {
	Create(ctx context.Context, rec *entity.ProgressRecord) (*entity.ProgressRecord, error)
	// BulkCreate inserts records, silently skipping pairs that already
	// exist. Creation is exactly-once per (learner, unit); a caller
	// that loses the race adopts the surviving record via ListByUnits.
	BulkCreate(ctx context.Context, recs []*entity.ProgressRecord) error
	GetByID(ctx context.Context, learnerID, id int64) (*entity.ProgressRecord, error)
	ListDue(ctx context.Context, learnerID int64, due time.Time, limit int) ([]*entity.ProgressRecord, error)
	ListByUnits(ctx context.Context, learnerID int64, unitIDs []int64) ([]*entity.ProgressRecord, error)
	List(ctx context.Context, query *ListProgressQuery) ([]*entity.ProgressRecord, int64, error)
	// ApplyReview merges upd into the record and atomically increments
	// total/correct/incorrect counters, returning the updated record.
	// Missing or foreign records yield entity.ErrProgressNotFound.
	ApplyReview(ctx context.Context, learnerID, id int64, upd ReviewUpdate) (*entity.ProgressRecord, error)
	CountByStatus(ctx context.Context, learnerID int64) (map[entity.Status]int64, error)
	CountDueBetween(ctx context.Context, learnerID int64, from, to time.Time) (int64, error)
	CountDueBefore(ctx context.Context, learnerID int64, before time.Time) (int64, error)
	AttemptTotals(ctx context.Context, learnerID int64) (total, correct int64, err error)
	// ListStatusDivergent returns records whose persisted status does
	// not match the engine's recomputation rule, for audit logging.
	ListStatusDivergent(ctx context.Context, limit int) ([]*entity.ProgressRecord, error)
}
