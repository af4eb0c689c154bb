package inbound

import (
	"context"

	"github.com/shandysiswandi/otpauth/internal/pkg/schedule"
)

type sweeper interface {
	SweepExpired(ctx context.Context) error
}

// JanitorJob removes expired challenges and sessions.
type JanitorJob struct {
	uc sweeper
}

func (j *JanitorJob) Name() string { return "identity_janitor" }

func (j *JanitorJob) Run(ctx context.Context) error {
	return j.uc.SweepExpired(ctx)
}

// RegisterJob adds the janitor to the scheduler under the given cron spec.
func RegisterJob(s *schedule.CronScheduler, uc sweeper, spec string) error {
	if spec == "" {
		spec = "@every 60s"
	}
	return s.AddJob(&JanitorJob{uc: uc}, spec)
}
