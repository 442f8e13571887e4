// Package audit runs the nightly status consistency check. Persisted
// statuses can legitimately drift from what the scheduling rules would
// recompute, so divergences are reported, never repaired.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/revise/internal/repository"
	"github.com/eslsoft/revise/internal/srs"
)

// Auditor schedules and runs the status divergence scan.
type Auditor struct {
	scheduler *gocron.Scheduler
	progress  repository.ProgressRepository
	logger    logrus.FieldLogger
	limit     int
}

// New creates an auditor scanning at most limit records per run.
func New(progress repository.ProgressRepository, logger logrus.FieldLogger, limit int) *Auditor {
	return &Auditor{
		scheduler: gocron.NewScheduler(time.UTC),
		progress:  progress,
		logger:    logger,
		limit:     limit,
	}
}

// Start schedules a daily run at the given "HH:MM" UTC time.
func (a *Auditor) Start(at string) error {
	if _, err := a.scheduler.Every(1).Day().At(at).Do(a.runOnce); err != nil {
		return fmt.Errorf("schedule status audit: %w", err)
	}
	a.scheduler.StartAsync()
	return nil
}

// Stop terminates the scheduler.
func (a *Auditor) Stop() {
	a.scheduler.Stop()
}

func (a *Auditor) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := a.Run(ctx); err != nil {
		a.logger.WithError(err).Error("status audit failed")
	}
}

// Run scans for records whose persisted status differs from the
// recomputed one and logs each divergence.
func (a *Auditor) Run(ctx context.Context) error {
	recs, err := a.progress.ListStatusDivergent(ctx, a.limit)
	if err != nil {
		return fmt.Errorf("list divergent records: %w", err)
	}

	for _, rec := range recs {
		a.logger.WithFields(logrus.Fields{
			"progress_id": rec.ID,
			"learner_id":  rec.LearnerID,
			"unit_id":     rec.UnitID,
			"status":      rec.Status,
			"expected":    srs.ExpectedStatus(rec.Repetitions, rec.IntervalDays),
		}).Warn("progress status diverges from scheduling rule")
	}

	a.logger.WithField("divergent", len(recs)).Info("status audit completed")
	return nil
}
