package models

// ReminderCreateRequest is the body of POST /v1/reminders.
// Exactly one of DurationMinutes or FiresAt must be set.
type ReminderCreateRequest struct {
	Message string `json:"message,omitempty"`

	// DurationMinutes schedules the reminder relative to now.
	DurationMinutes int `json:"durationMinutes,omitempty" validate:"omitempty,gt=0"`

	// FiresAt schedules the reminder at an absolute RFC3339 time.
	FiresAt *Timestamp `json:"firesAt,omitempty"`
}

// Reminder is a scheduled move-car notification.
type Reminder struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	FiresAt   Timestamp `json:"firesAt"`
	CreatedAt Timestamp `json:"createdAt"`
}
