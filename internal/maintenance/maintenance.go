// Package maintenance runs the periodic housekeeping of the service: the
// retention purge of old cards and the refresh of the stored-count gauges.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Cards is what the job needs from the card service.
type Cards interface {
	Count(ctx context.Context) (int64, error)
	Purge(ctx context.Context, days int) (int64, error)
}

// Users counts accounts.
type Users interface {
	Count(ctx context.Context) (int64, error)
}

// Gauges receives the refreshed counts.
type Gauges interface {
	SetCardsStored(n int64)
	SetUsersRegistered(n int64)
	SetLastPurged(n int64)
}

type Job struct {
	cards         Cards
	users         Users
	gauges        Gauges
	retentionDays int
	timeout       time.Duration
	log           *slog.Logger
}

func NewJob(cards Cards, users Users, gauges Gauges, retentionDays int, log *slog.Logger) *Job {
	return &Job{
		cards:         cards,
		users:         users,
		gauges:        gauges,
		retentionDays: retentionDays,
		timeout:       time.Minute,
		log:           log,
	}
}

// Run purges first so that the gauges reflect what is left. Every step runs
// even when an earlier one fails; the errors are joined.
func (j *Job) Run(ctx context.Context) error {
	var errs []error

	if j.retentionDays > 0 {
		n, err := j.cards.Purge(ctx, j.retentionDays)
		if err != nil {
			errs = append(errs, fmt.Errorf("purge cards: %w", err))
		} else {
			j.gauges.SetLastPurged(n)
			if n > 0 {
				j.log.Info("purged old cards", "count", n, "retention_days", j.retentionDays)
			}
		}
	}

	if n, err := j.cards.Count(ctx); err != nil {
		errs = append(errs, fmt.Errorf("count cards: %w", err))
	} else {
		j.gauges.SetCardsStored(n)
	}

	if n, err := j.users.Count(ctx); err != nil {
		errs = append(errs, fmt.Errorf("count users: %w", err))
	} else {
		j.gauges.SetUsersRegistered(n)
	}

	return errors.Join(errs...)
}

// Scheduler runs a Job on a cron schedule.
type Scheduler struct {
	cron  *cron.Cron
	job   *Job
	entry cron.EntryID
	// first tracks the run kicked off by Start, which cron does not see.
	first sync.WaitGroup
}

// Schedule registers job under expr, a standard five-field cron line or a
// descriptor such as "@every 5m". Nothing runs until Start.
func Schedule(expr string, job *Job, log *slog.Logger) (*Scheduler, error) {
	logger := cronLogger{log: log}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	s := &Scheduler{cron: c, job: job}
	id, err := c.AddFunc(expr, s.tick)
	if err != nil {
		return nil, fmt.Errorf("schedule maintenance %q: %w", expr, err)
	}
	s.entry = id
	return s, nil
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.job.timeout)
	defer cancel()
	if err := s.job.Run(ctx); err != nil {
		s.job.log.Error("maintenance run failed", "error", err)
	}
}

// Start runs the job once right away, then on schedule. The first run goes
// through the same chain as the scheduled ones, so a slow first run makes
// the next tick skip instead of overlapping it.
func (s *Scheduler) Start() {
	run := s.cron.Entry(s.entry).WrappedJob
	s.first.Add(1)
	go func() {
		defer s.first.Done()
		run.Run()
	}()
	s.cron.Start()
}

// Stop waits for running jobs, the first one included, to finish, or for
// ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		<-s.cron.Stop().Done()
		s.first.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger adapts slog to cron.Logger. Info is noisy (one line per tick)
// and goes to debug.
type cronLogger struct {
	log *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
