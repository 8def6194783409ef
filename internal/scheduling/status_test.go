package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinic-app-server/internal/models"
)

func TestCheckTransitionForbiddenEdges(t *testing.T) {
	err := CheckTransition(models.StatusCancelled, models.StatusConfirmed)
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "cannot confirm a cancelled appointment", err.Error())

	err = CheckTransition(models.StatusCompleted, models.StatusCancelled)
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, "cannot cancel a completed appointment", err.Error())
}

func TestCheckTransitionInvalidStatus(t *testing.T) {
	for _, from := range []models.AppointmentStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusCompleted, models.StatusCancelled,
	} {
		err := CheckTransition(from, models.AppointmentStatus("rescheduled"))
		assert.ErrorIs(t, err, ErrInvalidStatus, "from %s", from)
	}
}

// The table is permissive: every combination of the four statuses is legal
// except the two forbidden edges.
func TestCheckTransitionPermissiveTable(t *testing.T) {
	statuses := []models.AppointmentStatus{
		models.StatusPending, models.StatusConfirmed, models.StatusCompleted, models.StatusCancelled,
	}

	forbidden := func(from, to models.AppointmentStatus) bool {
		return (from == models.StatusCancelled && to == models.StatusConfirmed) ||
			(from == models.StatusCompleted && to == models.StatusCancelled)
	}

	for _, from := range statuses {
		for _, to := range statuses {
			err := CheckTransition(from, to)
			if forbidden(from, to) {
				assert.Error(t, err, "%s -> %s should be rejected", from, to)
			} else {
				assert.NoError(t, err, "%s -> %s should be allowed", from, to)
			}
		}
	}
}
