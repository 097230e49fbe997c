package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/staffhive/staffing-engine/pkg/repositories"
)

// ReleaseSweeper frees the staff of accepted projects whose end date has
// passed. A single sweep fans out one goroutine per expired project;
// failures are isolated per project.
type ReleaseSweeper interface {
	Sweep(ctx context.Context) (int, error)
	RunScheduler(ctx context.Context, interval time.Duration)
}

type releaseSweeper struct {
	projects  repositories.ProjectRepository
	lifecycle LifecycleService
	clock     Clock
	logger    *zap.Logger
}

// NewReleaseSweeper creates a new release sweeper.
func NewReleaseSweeper(
	projects repositories.ProjectRepository,
	lifecycle LifecycleService,
	clock Clock,
	logger *zap.Logger,
) ReleaseSweeper {
	return &releaseSweeper{
		projects:  projects,
		lifecycle: lifecycle,
		clock:     clock,
		logger:    logger.Named("release-sweeper"),
	}
}

var _ ReleaseSweeper = (*releaseSweeper)(nil)

// Sweep releases every expired accepted project and returns the number of
// projects successfully released.
func (s *releaseSweeper) Sweep(ctx context.Context) (int, error) {
	expired, err := s.projects.ListExpiredAccepted(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		return 0, nil
	}

	var (
		wg       sync.WaitGroup
		released atomic.Int64
	)
	for i := range expired {
		project := expired[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.lifecycle.ClearEmployees(ctx, &project); err != nil {
				s.logger.Error("Failed to release expired project",
					zap.String("project_id", project.ID.String()),
					zap.Error(err))
				return
			}
			released.Add(1)
		}()
	}
	wg.Wait()

	s.logger.Info("Release sweep completed",
		zap.Int("expired", len(expired)),
		zap.Int64("released", released.Load()))
	return int(released.Load()), nil
}

// RunScheduler starts the recurring sweep in a background goroutine. The
// first sweep runs one interval after startup; the goroutine exits when
// the context is cancelled.
func (s *releaseSweeper) RunScheduler(ctx context.Context, interval time.Duration) {
	s.logger.Info("Starting release sweeper scheduler", zap.Duration("interval", interval))

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info("Release sweeper scheduler stopped")
				return
			case <-ticker.C:
				if _, err := s.Sweep(ctx); err != nil {
					s.logger.Error("Release sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
