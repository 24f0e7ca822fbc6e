package scheduler

import (
	"context"
	"errors"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/dataguard-br/privacy-engine/internal/service/lifecycle"
)

// Scheduler runs the expired-data cleanup sweep on a cron schedule. The sweep
// itself refuses to run concurrently, so overlapping triggers degrade to a
// logged skip.
type Scheduler struct {
	cron    *cron.Cron
	manager *lifecycle.Manager
	logger  *zap.Logger
}

func New(schedule string, manager *lifecycle.Manager, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		manager: manager,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.runCleanup); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) runCleanup() {
	stats, err := s.manager.CleanupExpiredData(context.Background())
	switch {
	case errors.Is(err, lifecycle.ErrSweepInProgress):
		s.logger.Warn("cleanup sweep skipped, previous sweep still running")
	case err != nil:
		s.logger.Error("cleanup sweep aborted", zap.Error(err))
	default:
		s.logger.Info("scheduled cleanup sweep completed",
			zap.Int("anonymized", stats.Anonymized),
			zap.Int("hard_deleted", stats.HardDeleted),
			zap.Int("skipped", stats.Skipped),
		)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
