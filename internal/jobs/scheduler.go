// Package jobs runs periodic background work against an injectable clock.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/yukikurage/learnflow-api/internal/logger"
	"github.com/yukikurage/learnflow-api/internal/metrics"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// Schedule computes the next run strictly after a given time.
type Schedule interface {
	Next(after time.Time) time.Time
}

// Every runs a job at a fixed interval.
type Every time.Duration

func (e Every) Next(after time.Time) time.Time {
	d := time.Duration(e)
	if d <= 0 {
		d = time.Minute
	}
	return after.Add(d)
}

// DailyAt runs a job once a day at Hour:Minute in Location (UTC when nil).
type DailyAt struct {
	Hour     int
	Minute   int
	Location *time.Location
}

func (d DailyAt) Next(after time.Time) time.Time {
	loc := d.Location
	if loc == nil {
		loc = time.UTC
	}
	local := after.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), d.Hour, d.Minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Job is a unit of scheduled work. Run receives the tick time, which tests
// control through Tick.
type Job struct {
	Name     string
	Schedule Schedule
	// Immediate runs the job on the first tick instead of waiting for its schedule.
	Immediate bool
	// Timeout bounds a single run; zero means no limit.
	Timeout time.Duration
	Run     func(ctx context.Context, now time.Time) error
}

type entry struct {
	job  Job
	next time.Time
}

// Scheduler runs registered jobs when they fall due. Jobs run one at a time
// on the scheduler goroutine.
type Scheduler struct {
	clock      Clock
	resolution time.Duration

	mu      sync.Mutex
	entries []*entry
}

// New creates a scheduler that checks for due jobs every resolution.
func New(clock Clock, resolution time.Duration) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if resolution <= 0 {
		resolution = time.Second
	}
	return &Scheduler{clock: clock, resolution: resolution}
}

func (s *Scheduler) Add(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, &entry{job: job})
}

// Tick runs every job due at now and returns how many ran.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) int {
	s.mu.Lock()
	var due []*entry
	for _, e := range s.entries {
		if e.next.IsZero() {
			if !e.job.Immediate {
				e.next = e.job.Schedule.Next(now)
				continue
			}
			e.next = now
		}
		if !now.Before(e.next) {
			due = append(due, e)
			e.next = e.job.Schedule.Next(now)
		}
	}
	s.mu.Unlock()

	ran := 0
	for _, e := range due {
		if ctx.Err() != nil {
			break
		}
		s.run(ctx, e.job, now)
		ran++
	}
	return ran
}

func (s *Scheduler) run(ctx context.Context, job Job, now time.Time) {
	runCtx := ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := job.Run(runCtx, now)
	metrics.JobRuns.WithLabelValues(job.Name, metrics.Outcome(err)).Inc()
	if err != nil {
		logger.Error("job failed", "job", job.Name, "err", err)
		return
	}
	logger.Debug("job finished", "job", job.Name, "took", time.Since(start))
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.resolution)
	defer ticker.Stop()

	s.Tick(ctx, s.clock.Now())
	for {
		select {
		case <-ctx.Done():
			logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx, s.clock.Now())
		}
	}
}
