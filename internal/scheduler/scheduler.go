// Package scheduler runs periodic snapshot and retention jobs on a cron
// expression. The snapshot engine itself owns no timers; this loop is the
// single place that drives it on a schedule.
package scheduler

import (
	"context"
	"time"

	"github.com/lwexler/theralog-be/internal/backup"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// BackupRunner is the slice of the snapshot engine the scheduler drives.
type BackupRunner interface {
	CreateFullBackup(ctx context.Context, opts backup.FullBackupOptions) (*backup.BackupResult, error)
	CreateIncrementalBackup(ctx context.Context, since time.Time, compress bool) (*backup.BackupResult, error)
	CleanupOldBackups(keepDays, keepMinimum int) (*backup.CleanupResult, error)
}

// Config holds the scheduler's job parameters.
type Config struct {
	CronExpression string
	BackupType     string // "full" or "incremental"
	Compress       bool
	KeepDays       int
	KeepMinimum    int
}

// Scheduler executes a backup plus a retention pass whenever the cron
// schedule fires.
type Scheduler struct {
	engine   BackupRunner
	cfg      Config
	schedule cron.Schedule
	lastRun  time.Time
	ticker   *time.Ticker
	done     chan bool
}

// New creates a scheduler. The cron expression uses the standard five-field
// format.
func New(engine BackupRunner, cfg Config) (*Scheduler, error) {
	schedule, err := cron.ParseStandard(cfg.CronExpression)
	if err != nil {
		return nil, err
	}
	return &Scheduler{
		engine:   engine,
		cfg:      cfg,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the scheduler's ticking loop. It blocks until Stop is called.
func (s *Scheduler) Run() {
	log.Info().
		Str("cron", s.cfg.CronExpression).
		Str("type", s.cfg.BackupType).
		Msg("Starting backup scheduler")

	nextRun := s.schedule.Next(time.Now())
	s.ticker = time.NewTicker(30 * time.Second)
	defer s.ticker.Stop()

	for {
		select {
		case <-s.done:
			log.Info().Msg("Stopping backup scheduler")
			return
		case now := <-s.ticker.C:
			if now.Before(nextRun) {
				continue
			}
			s.runOnce(now)
			nextRun = s.schedule.Next(now)
		}
	}
}

// Stop halts the scheduler.
func (s *Scheduler) Stop() {
	s.done <- true
}

// runOnce executes one scheduled backup followed by a retention pass.
func (s *Scheduler) runOnce(now time.Time) {
	ctx := context.Background()

	var err error
	switch s.cfg.BackupType {
	case "incremental":
		since := s.lastRun
		if since.IsZero() {
			// First run of this process: capture the last week.
			since = now.AddDate(0, 0, -7)
		}
		_, err = s.engine.CreateIncrementalBackup(ctx, since, s.cfg.Compress)
	default:
		_, err = s.engine.CreateFullBackup(ctx, backup.FullBackupOptions{
			Compress:         s.cfg.Compress,
			IncludeTrialLogs: true,
		})
	}
	if err != nil {
		log.Error().Err(err).Msg("Scheduled backup failed")
		return
	}
	s.lastRun = now

	if _, err := s.engine.CleanupOldBackups(s.cfg.KeepDays, s.cfg.KeepMinimum); err != nil {
		log.Error().Err(err).Msg("Scheduled backup cleanup failed")
	}
}
