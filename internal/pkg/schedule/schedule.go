// Package schedule runs named background jobs on cron specs.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/atomic"
)

// Job is a unit of periodic work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// CronScheduler runs jobs with robfig/cron. A run that is still in progress
// when the next tick fires causes that tick to be skipped.
type CronScheduler struct {
	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewCronScheduler accepts standard five field specs, an optional leading
// seconds field and descriptors such as "@every 60s" or "@hourly".
func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(
		cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)

	ctx, cancel := context.WithCancel(context.Background())

	return &CronScheduler{
		cron:    cron.New(cron.WithParser(parser)),
		entries: make(map[string]cron.EntryID),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// AddJob registers job under spec. Registering the same name twice replaces
// the earlier entry.
func (c *CronScheduler) AddJob(job Job, spec string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entryID, err := c.cron.AddFunc(spec, c.wrap(job, spec))
	if err != nil {
		slog.Error("failed to schedule job", "job", job.Name(), "spec", spec, "error", err)
		return err
	}

	if old, ok := c.entries[job.Name()]; ok {
		c.cron.Remove(old)
	}
	c.entries[job.Name()] = entryID

	slog.Info("job scheduled", "job", job.Name(), "spec", spec)
	return nil
}

// Start begins dispatching jobs in the background.
func (c *CronScheduler) Start() {
	c.cron.Start()
}

// Stop cancels the context given to running jobs and waits for them, or for
// ctx to end, whichever comes first.
func (c *CronScheduler) Stop(ctx context.Context) error {
	done := c.cron.Stop()
	c.cancel()

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *CronScheduler) wrap(job Job, spec string) func() {
	running := atomic.NewBool(false)

	return func() {
		if !running.CompareAndSwap(false, true) {
			slog.Info("job skipped: still running", "job", job.Name(), "spec", spec)
			return
		}
		defer running.Store(false)

		start := time.Now()
		slog.Debug("job started", "job", job.Name())

		if err := job.Run(c.ctx); err != nil {
			slog.Error("job finished", "job", job.Name(), "duration", time.Since(start), "error", err)
			return
		}

		slog.Debug("job finished", "job", job.Name(), "duration", time.Since(start))
	}
}
