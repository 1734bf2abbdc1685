package reminder_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curbwise/curbwise/internal/reminder"
)

func TestScheduler_FireDeliversOnce(t *testing.T) {
	fired := make(chan reminder.Reminder, 1)

	s := reminder.NewScheduler(reminder.SchedulerConfig{
		Notifier: reminder.NotifierFunc(func(r reminder.Reminder) { fired <- r }),
		Logger:   zerolog.Nop(),
	})
	defer s.Close()

	r, err := s.ScheduleAfter("Move your car", 10*time.Millisecond)
	require.NoError(t, err)
	require.NotEmpty(t, r.ID)
	assert.Equal(t, 1, s.Pending())

	select {
	case got := <-fired:
		assert.Equal(t, r.ID, got.ID)
		assert.Equal(t, "Move your car", got.Message)
	case <-time.After(time.Second):
		t.Fatal("reminder did not fire")
	}

	assert.Equal(t, 0, s.Pending())
	assert.ErrorIs(t, s.Cancel(r.ID), reminder.ErrNotFound)
}

func TestScheduler_CancelPreventsDelivery(t *testing.T) {
	var fired atomic.Int32

	s := reminder.NewScheduler(reminder.SchedulerConfig{
		Notifier: reminder.NotifierFunc(func(reminder.Reminder) { fired.Add(1) }),
		Logger:   zerolog.Nop(),
	})
	defer s.Close()

	r, err := s.ScheduleAfter("Move your car", 30*time.Millisecond)
	require.NoError(t, err)

	require.NoError(t, s.Cancel(r.ID))
	assert.Equal(t, 0, s.Pending())

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}

func TestScheduler_PastTimeRejected(t *testing.T) {
	s := reminder.NewScheduler(reminder.SchedulerConfig{
		Notifier: reminder.NotifierFunc(func(reminder.Reminder) {}),
		Logger:   zerolog.Nop(),
	})
	defer s.Close()

	_, err := s.Schedule("too late", time.Now().Add(-time.Minute))
	assert.ErrorIs(t, err, reminder.ErrInvalidFireTime)
}

func TestScheduler_Get(t *testing.T) {
	s := reminder.NewScheduler(reminder.SchedulerConfig{
		Notifier: reminder.NotifierFunc(func(reminder.Reminder) {}),
		Logger:   zerolog.Nop(),
	})
	defer s.Close()

	r, err := s.ScheduleAfter("check meter", time.Minute)
	require.NoError(t, err)

	got, err := s.Get(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "check meter", got.Message)

	_, err = s.Get("nope")
	assert.ErrorIs(t, err, reminder.ErrNotFound)
}

func TestScheduler_CloseCancelsAll(t *testing.T) {
	var fired atomic.Int32

	s := reminder.NewScheduler(reminder.SchedulerConfig{
		Notifier: reminder.NotifierFunc(func(reminder.Reminder) { fired.Add(1) }),
		Logger:   zerolog.Nop(),
	})

	for i := 0; i < 3; i++ {
		_, err := s.ScheduleAfter("x", 20*time.Millisecond)
		require.NoError(t, err)
	}

	s.Close()
	assert.Equal(t, 0, s.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	_, err := s.ScheduleAfter("x", time.Minute)
	assert.Error(t, err)
}
