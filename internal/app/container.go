package app

import (
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/revise/internal/adapter/httpapi"
	adapterrepo "github.com/eslsoft/revise/internal/adapter/repository"
	"github.com/eslsoft/revise/internal/infrastructure/audit"
	"github.com/eslsoft/revise/internal/infrastructure/config"
	"github.com/eslsoft/revise/internal/infrastructure/database"
	"github.com/eslsoft/revise/internal/infrastructure/server"
	"github.com/eslsoft/revise/internal/selector"
	"github.com/eslsoft/revise/internal/usecase"
)

// Container aggregates the application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Server  *server.Server
	Auditor *audit.Auditor
}

// Initialize builds the application container. The returned cleanup
// closes the database pool.
func Initialize() (*Container, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger, err := server.NewLogger(cfg)
	if err != nil {
		return nil, nil, err
	}

	pool, cleanup, err := database.NewConnection(cfg)
	if err != nil {
		if cleanup != nil {
			cleanup()
		}
		return nil, nil, err
	}

	progressRepo := adapterrepo.NewProgressRepository(pool)
	knowledgeRepo := adapterrepo.NewKnowledgeRepository(pool)
	exerciseRepo := adapterrepo.NewExerciseRepository(pool)
	reviewLogRepo := adapterrepo.NewReviewLogRepository(pool)

	sessionUC := usecase.NewSessionUsecase(progressRepo, knowledgeRepo, exerciseRepo, selector.New(nil))
	reviewUC := usecase.NewReviewUsecase(progressRepo, knowledgeRepo, reviewLogRepo, logger)
	statsUC := usecase.NewStatsUsecase(progressRepo, reviewLogRepo)
	progressUC := usecase.NewProgressUsecase(progressRepo)

	handler := httpapi.NewHandler(sessionUC, reviewUC, statsUC, progressUC, logger)
	srv := server.NewServer(cfg, logger, handler)
	auditor := audit.New(progressRepo, logger, cfg.Audit.Limit)

	return &Container{
		Config:  cfg,
		Logger:  logger,
		Server:  srv,
		Auditor: auditor,
	}, cleanup, nil
}
