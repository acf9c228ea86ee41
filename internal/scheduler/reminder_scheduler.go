package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/vidaplan/corretora-api/internal/config"
	"github.com/vidaplan/corretora-api/internal/services"
	"github.com/vidaplan/corretora-api/pkg/logger"
)

// ReminderScheduler periodically scans due reminders and fires their
// notifications. One scan runs at a time; a tick that lands while the
// previous scan still runs is skipped.
type ReminderScheduler struct {
	scheduler   *gocron.Scheduler
	cfg         *config.Config
	reminderSvc *services.ReminderService
	running     bool
	mu          sync.Mutex
	lastRunAt   time.Time
	lastFired   int
}

// NewReminderScheduler creates the reminder scan scheduler
func NewReminderScheduler(cfg *config.Config, reminderSvc *services.ReminderService) *ReminderScheduler {
	return &ReminderScheduler{
		scheduler:   gocron.NewScheduler(time.Local),
		cfg:         cfg,
		reminderSvc: reminderSvc,
	}
}

// Start schedules the reminder scan and runs it until ctx is cancelled
func (s *ReminderScheduler) Start(ctx context.Context) error {
	logger.Info(fmt.Sprintf("[Scheduler] Reminder scan scheduled (cron: %s)", s.cfg.ReminderCron))

	_, err := s.scheduler.Cron(s.cfg.ReminderCron).Do(func() {
		s.scan(ctx)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar varredura de lembretes: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logger.Info("[Scheduler] Stopping reminder scan")
		s.scheduler.Stop()
	}()
	return nil
}

func (s *ReminderScheduler) scan(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Info("[Scheduler] Reminder scan already running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	fired, err := s.reminderSvc.ProcessDue(ctx)
	if err != nil {
		logger.Error(fmt.Sprintf("[Scheduler] Reminder scan failed: %v", err))
		return
	}

	s.mu.Lock()
	s.lastRunAt = time.Now()
	s.lastFired = fired
	s.mu.Unlock()

	if fired > 0 {
		logger.Info(fmt.Sprintf("[Scheduler] Reminder scan fired %d reminder(s)", fired))
	}
}

// TriggerManual runs a scan outside the schedule. The scan outlives the
// caller, so cancellation of the incoming context does not cut it short.
func (s *ReminderScheduler) TriggerManual(ctx context.Context) {
	go s.scan(context.WithoutCancel(ctx))
}

// Status reports the scheduler state for the health endpoint
func (s *ReminderScheduler) Status() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return map[string]any{
		"cron":        s.cfg.ReminderCron,
		"running":     s.running,
		"last_run_at": s.lastRunAt,
		"last_fired":  s.lastFired,
	}
}
