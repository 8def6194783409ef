package scheduling

import (
	"clinic-app-server/internal/models"
)

// CheckTransition validates a requested status change. The table is
// deliberately permissive: of the sixteen combinations only two are
// rejected, confirming a cancelled appointment and cancelling a completed
// one. Reversals such as completed back to confirmed remain legal.
func CheckTransition(from, to models.AppointmentStatus) error {
	if !models.ValidStatus(to) {
		return ErrInvalidStatus
	}
	if from == models.StatusCancelled && to == models.StatusConfirmed {
		return &TransitionError{From: from, To: to}
	}
	if from == models.StatusCompleted && to == models.StatusCancelled {
		return &TransitionError{From: from, To: to}
	}
	return nil
}
