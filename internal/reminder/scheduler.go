// Package reminder schedules move-car notifications with cancellable handles.
package reminder

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sentinel errors for reminder operations.
var (
	// ErrNotFound indicates no pending reminder exists with the given ID.
	ErrNotFound = errors.New("reminder not found")
	// ErrInvalidFireTime indicates the requested time is not in the future.
	ErrInvalidFireTime = errors.New("reminder time must be in the future")
)

// Reminder is a scheduled move-car notification.
type Reminder struct {
	// ID is the cancellation handle.
	ID string `json:"id"`

	// Message is the notification text.
	Message string `json:"message"`

	// FiresAt is when the notification is delivered.
	FiresAt time.Time `json:"fires_at"`

	// CreatedAt is when the reminder was scheduled.
	CreatedAt time.Time `json:"created_at"`
}

// Notifier delivers a fired reminder.
type Notifier interface {
	Notify(r Reminder)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(r Reminder)

func (f NotifierFunc) Notify(r Reminder) { f(r) }

// SchedulerConfig holds configuration for the scheduler.
type SchedulerConfig struct {
	// Notifier receives fired reminders (required).
	Notifier Notifier

	// Now supplies wall-clock time (optional, defaults to time.Now).
	Now func() time.Time

	// Logger for scheduler operations.
	Logger zerolog.Logger
}

// Scheduler holds pending reminders as cancellable timers. Every schedule
// call returns a handle ID that revokes the timer until it fires.
type Scheduler struct {
	notifier Notifier
	now      func() time.Time
	logger   zerolog.Logger

	mu      sync.Mutex
	pending map[string]*entry
	closed  bool
}

type entry struct {
	reminder Reminder
	timer    *time.Timer
}

// NewScheduler creates a new reminder scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{
		notifier: cfg.Notifier,
		now:      now,
		logger:   cfg.Logger,
		pending:  make(map[string]*entry),
	}
}

// Schedule registers a reminder firing at the given absolute time and returns
// its handle.
func (s *Scheduler) Schedule(message string, firesAt time.Time) (*Reminder, error) {
	now := s.now()
	delay := firesAt.Sub(now)
	if delay <= 0 {
		return nil, ErrInvalidFireTime
	}

	r := Reminder{
		ID:        uuid.NewString(),
		Message:   message,
		FiresAt:   firesAt,
		CreatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("scheduler is closed")
	}

	s.pending[r.ID] = &entry{
		reminder: r,
		timer: time.AfterFunc(delay, func() {
			s.fire(r.ID)
		}),
	}

	s.logger.Debug().
		Str("reminder_id", r.ID).
		Time("fires_at", firesAt).
		Msg("scheduled reminder")

	return &r, nil
}

// ScheduleAfter registers a reminder firing after the given duration.
func (s *Scheduler) ScheduleAfter(message string, d time.Duration) (*Reminder, error) {
	return s.Schedule(message, s.now().Add(d))
}

// Cancel revokes a pending reminder. Returns ErrNotFound if the reminder
// already fired or was never scheduled.
func (s *Scheduler) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pending[id]
	if !ok {
		return ErrNotFound
	}

	e.timer.Stop()
	delete(s.pending, id)

	s.logger.Debug().
		Str("reminder_id", id).
		Msg("cancelled reminder")

	return nil
}

// Get returns a pending reminder by ID.
func (s *Scheduler) Get(id string) (*Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.pending[id]
	if !ok {
		return nil, ErrNotFound
	}
	r := e.reminder
	return &r, nil
}

// Pending returns the number of reminders that have not fired or been
// cancelled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Close cancels all pending reminders. Further Schedule calls fail.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.pending {
		e.timer.Stop()
		delete(s.pending, id)
	}
	s.closed = true
}

// fire delivers a reminder if it is still pending. A losing race with Cancel
// delivers nothing.
func (s *Scheduler) fire(id string) {
	s.mu.Lock()
	e, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	s.mu.Unlock()

	if !ok {
		return
	}

	s.logger.Debug().
		Str("reminder_id", id).
		Msg("reminder fired")

	s.notifier.Notify(e.reminder)
}
