// Package scheduler runs periodic maintenance jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type tokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

type bookingCompleter interface {
	CompletePast(ctx context.Context) (int64, error)
}

// JobRecorder observes job outcomes.
type JobRecorder interface {
	JobRun(job string, err error)
}

// Job is a named unit of work. Run reports how many rows it affected.
type Job struct {
	Name     string
	Schedule string
	Timeout  time.Duration
	Run      func(ctx context.Context) (int64, error)
}

// TokenCleanupJob deletes expired and long-revoked refresh tokens.
func TokenCleanupJob(tokens tokenCleaner, schedule string) Job {
	return Job{
		Name:     "token_cleanup",
		Schedule: schedule,
		Timeout:  time.Minute,
		Run:      tokens.CleanupExpiredTokens,
	}
}

// BookingCompletionJob marks upcoming bookings whose stay has ended as completed.
func BookingCompletionJob(bookings bookingCompleter, schedule string) Job {
	return Job{
		Name:     "booking_completion",
		Schedule: schedule,
		Timeout:  time.Minute,
		Run:      bookings.CompletePast,
	}
}

type Scheduler struct {
	cron     *cron.Cron
	recorder JobRecorder
	logger   *slog.Logger
}

func New(recorder JobRecorder, logger *slog.Logger) *Scheduler {
	l := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
		recorder: recorder,
		logger:   logger,
	}
}

// Add registers job. The schedule uses standard five-field cron syntax or a
// descriptor such as "@hourly" or "@every 15m".
func (s *Scheduler) Add(ctx context.Context, job Job) error {
	_, err := s.cron.AddFunc(job.Schedule, func() { s.run(ctx, job) })
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", job.Name, job.Schedule, err)
	}
	s.logger.Info("job scheduled", slog.String("job", job.Name), slog.String("schedule", job.Schedule))
	return nil
}

// Start runs the scheduled jobs until ctx is done, then waits for running
// jobs to finish.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("scheduler started", slog.Int("jobs", len(s.cron.Entries())))

	<-ctx.Done()

	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) run(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	n, err := job.Run(ctx)
	s.recorder.JobRun(job.Name, err)

	if err != nil {
		s.logger.ErrorContext(ctx, "job failed",
			slog.String("job", job.Name),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.InfoContext(ctx, "job finished",
		slog.String("job", job.Name),
		slog.Int64("affected", n),
		slog.Duration("duration", time.Since(start)),
	)
}

type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
