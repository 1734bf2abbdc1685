package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/curbwise/curbwise/internal/api/models"
	"github.com/curbwise/curbwise/internal/api/response"
	"github.com/curbwise/curbwise/internal/reminder"
)

// defaultReminderMessage is used when the client does not provide one.
const defaultReminderMessage = "Time to move your car"

// ReminderHandler handles parking reminder endpoints.
type ReminderHandler struct {
	scheduler *reminder.Scheduler
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(scheduler *reminder.Scheduler) *ReminderHandler {
	return &ReminderHandler{scheduler: scheduler}
}

// CreateReminder handles POST /v1/reminders - schedule a move-car reminder.
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var input models.ReminderCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.DurationMinutes <= 0 && input.FiresAt == nil {
		response.BadRequest(w, r, "either durationMinutes or firesAt is required", []models.FieldError{
			{Field: "durationMinutes", Message: "one of durationMinutes or firesAt must be set", Code: "REQUIRED"},
		})
		return
	}

	message := input.Message
	if message == "" {
		message = defaultReminderMessage
	}

	var (
		rem *reminder.Reminder
		err error
	)
	if input.FiresAt != nil {
		rem, err = h.scheduler.Schedule(message, input.FiresAt.Time())
	} else {
		rem, err = h.scheduler.ScheduleAfter(message, time.Duration(input.DurationMinutes)*time.Minute)
	}
	if err != nil {
		if errors.Is(err, reminder.ErrInvalidFireTime) {
			response.BadRequest(w, r, "firesAt must be in the future", []models.FieldError{
				{Field: "firesAt", Message: "must be in the future", Code: "OUT_OF_RANGE"},
			})
			return
		}
		response.InternalError(w, r, "failed to schedule reminder")
		return
	}

	location := fmt.Sprintf("/v1/reminders/%s", rem.ID)
	response.Created(w, r, location, toAPIReminder(rem))
}

// GetReminder handles GET /v1/reminders/{reminderId} - inspect a pending reminder.
func (h *ReminderHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	reminderID := chi.URLParam(r, "reminderId")
	if reminderID == "" {
		response.BadRequest(w, r, "reminderId is required", nil)
		return
	}

	rem, err := h.scheduler.Get(reminderID)
	if err != nil {
		response.NotFound(w, r, "reminder not found")
		return
	}

	response.JSON(w, r, http.StatusOK, toAPIReminder(rem))
}

// CancelReminder handles DELETE /v1/reminders/{reminderId} - cancel a reminder.
func (h *ReminderHandler) CancelReminder(w http.ResponseWriter, r *http.Request) {
	reminderID := chi.URLParam(r, "reminderId")
	if reminderID == "" {
		response.BadRequest(w, r, "reminderId is required", nil)
		return
	}

	if err := h.scheduler.Cancel(reminderID); err != nil {
		response.NotFound(w, r, "reminder not found")
		return
	}

	response.NoContent(w, r)
}

func toAPIReminder(rem *reminder.Reminder) models.Reminder {
	return models.Reminder{
		ID:        rem.ID,
		Message:   rem.Message,
		FiresAt:   models.Timestamp(rem.FiresAt),
		CreatedAt: models.Timestamp(rem.CreatedAt),
	}
}
