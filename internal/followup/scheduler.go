package followup

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

// DefaultSchedule sends the digest every morning at 07:00.
const DefaultSchedule = "0 7 * * *"

// Job is the work a Scheduler runs on each tick.
type Job func(ctx context.Context) error

// Scheduler runs a job on a standard five-field cron schedule.
type Scheduler struct {
	cron    *cron.Cron
	loc     *time.Location
	job     Job
	timeout time.Duration
	logger  *logging.Logger
}

// NewScheduler parses spec in loc and registers job.
func NewScheduler(spec string, loc *time.Location, job Job, logger *logging.Logger) (*Scheduler, error) {
	if spec == "" {
		spec = DefaultSchedule
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Scheduler{
		cron:    cron.New(cron.WithLocation(loc)),
		loc:     loc,
		job:     job,
		timeout: 5 * time.Minute,
		logger:  logger,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("followup: invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the scheduler until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	s.logger.Info("follow-up scheduler started", "next_run", s.Next())
	go func() {
		<-ctx.Done()
		<-s.Stop().Done()
		s.logger.Info("follow-up scheduler stopped")
	}()
}

// Stop halts scheduling; the returned context is done once a running job finishes.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

// Next returns the next scheduled run.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	if !entries[0].Next.IsZero() {
		return entries[0].Next
	}
	return entries[0].Schedule.Next(time.Now().In(s.loc))
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.job(ctx); err != nil {
		s.logger.Error("scheduled follow-up digest failed", "error", err)
	}
}

// DigestJob adapts a Digest to a scheduler Job.
func DigestJob(d *Digest) Job {
	return func(ctx context.Context) error {
		_, _, err := d.Run(ctx)
		return err
	}
}
