package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/tour_booking/internal/lock"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Job периодическая фоновая задача
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	jobs     []Job
	locker   lock.Locker
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(locker lock.Locker, logger *zap.Logger, jobs ...Job) *Scheduler {
	return &Scheduler{
		jobs:     jobs,
		locker:   locker,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Run запускает все задачи и блокируется до отмены ctx или Stop
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("Starting background scheduler", zap.Int("jobs", len(s.jobs)))

	g, ctx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		g.Go(func() error {
			s.runJob(ctx, job)
			return nil
		})
	}
	return g.Wait()
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	// Первый запуск сразу при старте
	s.RunOnce(ctx, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce(ctx, job)
		case <-s.stopChan:
			s.logger.Info("Job stopped", zap.String("job", job.Name))
			return
		case <-ctx.Done():
			s.logger.Info("Job cancelled", zap.String("job", job.Name))
			return
		}
	}
}

// RunOnce выполняет задачу, если её не выполняет сейчас другой тик или экземпляр.
// Возвращает false, если запуск пропущен.
func (s *Scheduler) RunOnce(ctx context.Context, job Job) bool {
	release, ok, err := s.locker.TryLock(ctx, job.Name)
	if err != nil {
		s.logger.Error("Failed to acquire job lock", zap.String("job", job.Name), zap.Error(err))
		return false
	}
	if !ok {
		s.logger.Info("Job already running, skipping", zap.String("job", job.Name))
		return false
	}
	defer release()

	started := time.Now()
	if err := job.Run(ctx); err != nil {
		s.logger.Error("Job failed",
			zap.String("job", job.Name),
			zap.Duration("took", time.Since(started)),
			zap.Error(err),
		)
		return true
	}

	s.logger.Debug("Job finished", zap.String("job", job.Name), zap.Duration("took", time.Since(started)))
	return true
}
