package jobs

import (
	"context"
	"time"

	"github.com/yukikurage/learnflow-api/internal/logger"
)

// ReminderProcessor fires due reminders.
type ReminderProcessor interface {
	ProcessDueReminders(ctx context.Context, now time.Time) (int, error)
}

// DeadlineNotifier sends the daily deadline and study notifications.
type DeadlineNotifier interface {
	GenerateDeadlineNotifications(ctx context.Context, now time.Time) (int, error)
}

// Pinger checks a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Config controls the cadence of the built-in jobs.
type Config struct {
	ReminderInterval  time.Duration
	HeartbeatInterval time.Duration
	DigestHour        int
	Location          *time.Location
}

// ReminderJob processes due reminders every interval, starting on the first tick.
func ReminderJob(p ReminderProcessor, interval time.Duration) Job {
	return Job{
		Name:      "reminders",
		Schedule:  Every(interval),
		Immediate: true,
		Timeout:   interval,
		Run: func(ctx context.Context, now time.Time) error {
			fired, err := p.ProcessDueReminders(ctx, now)
			if fired > 0 {
				logger.Info("reminders fired", "count", fired)
			}
			return err
		},
	}
}

// DeadlineJob sends deadline notifications once a day at hour:00.
func DeadlineJob(n DeadlineNotifier, hour int, loc *time.Location) Job {
	return Job{
		Name:     "deadlines",
		Schedule: DailyAt{Hour: hour, Location: loc},
		Timeout:  5 * time.Minute,
		Run: func(ctx context.Context, now time.Time) error {
			sent, err := n.GenerateDeadlineNotifications(ctx, now)
			logger.Info("daily notifications generated", "count", sent)
			return err
		},
	}
}

// HeartbeatJob logs that the scheduler is alive and the database answers.
func HeartbeatJob(db Pinger, interval time.Duration) Job {
	return Job{
		Name:     "heartbeat",
		Schedule: Every(interval),
		Timeout:  10 * time.Second,
		Run: func(ctx context.Context, now time.Time) error {
			if db != nil {
				if err := db.PingContext(ctx); err != nil {
					return err
				}
			}
			logger.Info("scheduler heartbeat", "at", now.UTC().Format(time.RFC3339))
			return nil
		},
	}
}

// Register adds the reminder, deadline and heartbeat jobs to s.
func Register(s *Scheduler, cfg Config, reminders ReminderProcessor, deadlines DeadlineNotifier, db Pinger) {
	s.Add(ReminderJob(reminders, cfg.ReminderInterval))
	s.Add(DeadlineJob(deadlines, cfg.DigestHour, cfg.Location))
	s.Add(HeartbeatJob(db, cfg.HeartbeatInterval))
}
