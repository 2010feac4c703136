// Package scheduler runs the periodic background jobs of the service.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const DefaultReminderSpec = "0 9 * * *"

// Job is one unit of periodic work. Jobs receive a context that is cancelled
// when the scheduler stops or the job exceeds its timeout.
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

type Scheduler struct {
	cron   *cron.Cron
	log    logrus.FieldLogger
	ctx    context.Context
	cancel context.CancelFunc
}

func New(location *time.Location, log logrus.FieldLogger) *Scheduler {
	if location == nil {
		location = time.UTC
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(location),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		log:    log.WithField("component", "scheduler"),
		ctx:    ctx,
		cancel: cancel,
	}
}

func (scheduler *Scheduler) Add(job Job) error {
	if job.Run == nil {
		return fmt.Errorf("job %s has no run function", job.Name)
	}
	_, err := scheduler.cron.AddFunc(job.Spec, func() {
		scheduler.runJob(job)
	})
	if err != nil {
		return fmt.Errorf("schedule job %s with spec %q: %w", job.Name, job.Spec, err)
	}
	scheduler.log.WithFields(logrus.Fields{"job": job.Name, "spec": job.Spec}).Info("job scheduled")
	return nil
}

func (scheduler *Scheduler) runJob(job Job) {
	ctx := scheduler.ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	entry := scheduler.log.WithField("job", job.Name)
	started := time.Now()
	if err := job.Run(ctx); err != nil {
		entry.WithError(err).Error("job failed")
		return
	}
	entry.WithField("duration", time.Since(started).String()).Debug("job finished")
}

func (scheduler *Scheduler) Start() {
	scheduler.cron.Start()
	scheduler.log.Info("scheduler started")
}

// Stop cancels running jobs and waits for them to return or for ctx to end.
func (scheduler *Scheduler) Stop(ctx context.Context) error {
	scheduler.cancel()
	stopped := scheduler.cron.Stop()
	select {
	case <-stopped.Done():
		scheduler.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for scheduled jobs: %w", ctx.Err())
	}
}

// ValidateSpec reports whether spec is a valid five-field cron expression.
func ValidateSpec(spec string) error {
	if _, err := cron.ParseStandard(spec); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	return nil
}
