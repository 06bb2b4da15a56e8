package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"waisdom/internal/models"
	"waisdom/pkg/logger"
)

// ReminderSource yields records whose reminders are due. Delivery is
// at-least-once: the source keeps returning a record until its reminder is
// removed or the record deleted, so a missed delivery is retried on the next
// check.
type ReminderSource interface {
	DueReminders(ctx context.Context, now time.Time) ([]*models.ContentRecord, error)
}

// Observer consumes one batch of due reminder notes.
type Observer func(ctx context.Context, reminders []models.ReminderNote) error

// Scheduler runs the periodic reminder check and any custom jobs. Each job
// holds a named slot; rescheduling a slot replaces the running job.
type Scheduler struct {
	source ReminderSource
	log    *logger.Logger

	mu        sync.Mutex
	jobs      map[string]context.CancelFunc
	wg        sync.WaitGroup
	observers []Observer
}

// New creates a stopped scheduler over a reminder source.
func New(source ReminderSource, log *logger.Logger) *Scheduler {
	return &Scheduler{
		source: source,
		log:    log,
		jobs:   make(map[string]context.CancelFunc),
	}
}

// AddReminderObserver registers an observer for due-reminder batches.
// Observers run in registration order; a failing observer is logged and does
// not block the others.
func (s *Scheduler) AddReminderObserver(obs Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, obs)
	s.mu.Unlock()
	s.log.Info("Registered reminder observer")
}

// SchedulePeriodicReminders runs the reminder check on a fixed interval
// under the "periodic_reminders" slot.
func (s *Scheduler) SchedulePeriodicReminders(interval time.Duration) {
	s.ScheduleEvery("periodic_reminders", interval, s.CheckReminders)
	s.log.Info(fmt.Sprintf("Scheduled periodic reminders every %s", interval))
}

// ScheduleDailyReminders runs the reminder check once a day at the given
// local time under the "daily_reminders" slot.
func (s *Scheduler) ScheduleDailyReminders(hour, minute int) {
	s.ScheduleDaily("daily_reminders", hour, minute, s.CheckReminders)
	s.log.Info(fmt.Sprintf("Scheduled daily reminders for %02d:%02d", hour, minute))
}

// ScheduleEvery starts a job that fires on a fixed interval. Scheduling an
// existing slot cancels the previous job first.
func (s *Scheduler) ScheduleEvery(slot string, interval time.Duration, job func(context.Context)) {
	ctx := s.claimSlot(slot)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job(ctx)
			}
		}
	}()
}

// ScheduleDaily starts a job that fires once a day at the given local time.
func (s *Scheduler) ScheduleDaily(slot string, hour, minute int, job func(context.Context)) {
	ctx := s.claimSlot(slot)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			timer := time.NewTimer(untilNext(time.Now(), hour, minute))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				job(ctx)
			}
		}
	}()
}

// claimSlot cancels any job holding the slot and installs a fresh context.
func (s *Scheduler) claimSlot(slot string) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.jobs[slot]; ok {
		cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.jobs[slot] = cancel
	return ctx
}

// untilNext returns the duration until the next occurrence of hour:minute.
func untilNext(now time.Time, hour, minute int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// CheckReminders fetches due reminders and fans them out to the observers.
// Errors never propagate out of a scheduled run.
func (s *Scheduler) CheckReminders(ctx context.Context) {
	s.log.Info("Checking for due reminders")

	records, err := s.source.DueReminders(ctx, time.Now())
	if err != nil {
		s.log.Error(fmt.Sprintf("Error checking reminders: %v", err))
		return
	}
	if len(records) == 0 {
		s.log.Info("No due reminders found")
		return
	}
	s.log.Info(fmt.Sprintf("Found %d due reminders", len(records)))

	notes := make([]models.ReminderNote, 0, len(records))
	for _, record := range records {
		notes = append(notes, models.ReminderNote{
			ID:            record.ID,
			Title:         record.Title,
			Summary:       record.Summary,
			PriorityScore: record.PriorityScore,
			Tags:          record.Tags,
			Actions:       record.Actions,
			CreatedAt:     record.CreatedAt,
		})
	}

	s.mu.Lock()
	observers := make([]Observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, obs := range observers {
		if err := obs(ctx, notes); err != nil {
			s.log.Error(fmt.Sprintf("Error in reminder observer: %v", err))
		}
	}
}

// Stop cancels every job and waits for the running ones to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for slot, cancel := range s.jobs {
		cancel()
		delete(s.jobs, slot)
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.log.Info("Scheduler shutdown")
}
