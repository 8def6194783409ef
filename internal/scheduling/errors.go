package scheduling

import (
	"errors"
	"fmt"

	"clinic-app-server/internal/models"
)

// Business-rule errors. Every one of these is a normal, expected outcome the
// caller maps to a user-facing rejection; none leaves state modified.
var (
	ErrPastDate      = errors.New("appointment date cannot be in the past")
	ErrPastTime      = errors.New("appointment time cannot be in the past")
	ErrSlotTaken     = errors.New("this time slot is already booked")
	ErrNotAuthorized = errors.New("only the assigned doctor can update this appointment")
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// TransitionError reports an illegal status transition.
type TransitionError struct {
	From models.AppointmentStatus
	To   models.AppointmentStatus
}

func (e *TransitionError) Error() string {
	switch {
	case e.From == models.StatusCancelled && e.To == models.StatusConfirmed:
		return "cannot confirm a cancelled appointment"
	case e.From == models.StatusCompleted && e.To == models.StatusCancelled:
		return "cannot cancel a completed appointment"
	}
	return fmt.Sprintf("cannot change appointment status from %s to %s", e.From, e.To)
}
