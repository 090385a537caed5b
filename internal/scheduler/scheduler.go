package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Scheduler runs named recurring jobs on cron schedules
type Scheduler struct {
	cron   *cron.Cron
	logger *log.Logger

	mu   sync.Mutex
	jobs map[string]cron.EntryID
}

// NewScheduler creates a scheduler that logs through logger
func NewScheduler(logger *log.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cronLogger{logger}), cron.SkipIfStillRunning(cronLogger{logger}))),
		logger: logger,
		jobs:   make(map[string]cron.EntryID),
	}
}

// RegisterFunc schedules fn under name using a standard cron spec or a
// descriptor such as "@hourly". Names must be unique.
func (s *Scheduler) RegisterFunc(spec, name string, fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("job %q is already registered", name)
	}

	id, err := s.cron.AddFunc(spec, func() {
		start := time.Now()
		if err := fn(); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "err", err)
			return
		}
		s.logger.Debug("scheduled job finished", "job", name, "took", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", spec, name, err)
	}

	s.jobs[name] = id
	s.logger.Info("registered scheduled job", "job", name, "schedule", spec)
	return nil
}

// Jobs returns the registered job names with their next run time
func (s *Scheduler) Jobs() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]time.Time, len(s.jobs))
	for name, id := range s.jobs {
		out[name] = s.cron.Entry(id).Next
	}
	return out
}

// Start begins running jobs in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Scheduler started!")
}

// Stop halts the scheduler and waits for running jobs to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

// cronLogger adapts charmbracelet/log to cron.Logger
type cronLogger struct {
	l *log.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append(keysAndValues, "err", err)...)
}
