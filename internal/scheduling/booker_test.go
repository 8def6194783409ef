package scheduling

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"clinic-app-server/internal/models"
)

const (
	countQuery  = "SELECT count\\(\\*\\) FROM `appointments`"
	insertQuery = "INSERT INTO `appointments`"
	selectQuery = "SELECT \\* FROM `appointments`"
	updateQuery = "UPDATE `appointments` SET"
)

func newMockBooker(t *testing.T) (*Booker, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return NewBooker(db), mock
}

func countRows(n int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count(*)"}).AddRow(n)
}

func appointmentRow(id, patientID, doctorID, date, timeOfDay string, status models.AppointmentStatus) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "created_at", "updated_at",
		"patient_id", "doctor_id", "appointment_date", "appointment_time",
		"reason", "status", "notes",
	}).AddRow(id, now, now, patientID, doctorID, date, timeOfDay, "checkup", string(status), "")
}

var testNow = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func testRequest() BookingRequest {
	return BookingRequest{
		PatientID: "patient-1",
		DoctorID:  "doctor-1",
		Date:      "2026-09-02",
		Time:      "10:00",
		Reason:    "Regular checkup",
	}
}

func TestBookRejectsPastDate(t *testing.T) {
	booker, mock := newMockBooker(t)

	req := testRequest()
	req.Date = "2026-08-31"

	appointment, err := booker.Book(context.Background(), req, testNow)
	assert.ErrorIs(t, err, ErrPastDate)
	assert.Nil(t, appointment)
	assert.NoError(t, mock.ExpectationsWereMet(), "no row may be created on rejection")
}

func TestBookRejectsPastTimeToday(t *testing.T) {
	booker, mock := newMockBooker(t)

	req := testRequest()
	req.Date = "2026-09-01"
	req.Time = "09:30"

	appointment, err := booker.Book(context.Background(), req, testNow)
	assert.ErrorIs(t, err, ErrPastTime)
	assert.Nil(t, appointment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookFreeSlotSucceedsAsPending(t *testing.T) {
	booker, mock := newMockBooker(t)

	mock.ExpectBegin()
	mock.ExpectQuery(countQuery).
		WithArgs("doctor-1", "2026-09-02", "10:00", "pending", "confirmed").
		WillReturnRows(countRows(0))
	mock.ExpectExec(insertQuery).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	appointment, err := booker.Book(context.Background(), testRequest(), testNow)
	require.NoError(t, err)
	assert.NotEmpty(t, appointment.ID)
	assert.Equal(t, models.StatusPending, appointment.Status)
	assert.Empty(t, appointment.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Today's slot at exactly the current time is not in the past.
func TestBookSameTimeTodayIsNotPast(t *testing.T) {
	booker, mock := newMockBooker(t)

	mock.ExpectBegin()
	mock.ExpectQuery(countQuery).WillReturnRows(countRows(0))
	mock.ExpectExec(insertQuery).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	req := testRequest()
	req.Date = "2026-09-01"
	req.Time = "10:00"

	_, err := booker.Book(context.Background(), req, testNow)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookRejectsOccupiedSlot(t *testing.T) {
	booker, mock := newMockBooker(t)

	mock.ExpectBegin()
	mock.ExpectQuery(countQuery).WillReturnRows(countRows(1))
	mock.ExpectRollback()

	appointment, err := booker.Book(context.Background(), testRequest(), testNow)
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.Nil(t, appointment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A released slot (completed or cancelled holder) can be booked again; the
// conflict scan only counts active statuses, so the store reports zero.
func TestBookReleasedSlotSucceeds(t *testing.T) {
	booker, mock := newMockBooker(t)

	mock.ExpectBegin()
	mock.ExpectQuery(countQuery).
		WithArgs("doctor-1", "2026-09-02", "10:00", "pending", "confirmed").
		WillReturnRows(countRows(0))
	mock.ExpectExec(insertQuery).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	_, err := booker.Book(context.Background(), testRequest(), testNow)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Two concurrent submissions for the same doctor/date/time slot: the
// per-doctor lock serializes them, so exactly one survives and the other
// sees the conflict.
func TestBookConcurrentSubmissionsSameSlot(t *testing.T) {
	booker, mock := newMockBooker(t)

	// Whichever goroutine enters first books the slot...
	mock.ExpectBegin()
	mock.ExpectQuery(countQuery).WillReturnRows(countRows(0))
	mock.ExpectExec(insertQuery).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	// ...and the second finds it taken.
	mock.ExpectBegin()
	mock.ExpectQuery(countQuery).WillReturnRows(countRows(1))
	mock.ExpectRollback()

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := booker.Book(context.Background(), testRequest(), testNow)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var booked, conflicted int
	for err := range results {
		switch {
		case err == nil:
			booked++
		case assert.ErrorIs(t, err, ErrSlotTaken):
			conflicted++
		}
	}
	assert.Equal(t, 1, booked, "exactly one submission may win the slot")
	assert.Equal(t, 1, conflicted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusByAssignedDoctor(t *testing.T) {
	booker, mock := newMockBooker(t)

	mock.ExpectQuery(selectQuery).
		WillReturnRows(appointmentRow("appt-1", "patient-1", "doctor-1", "2026-09-02", "10:00", models.StatusPending))
	mock.ExpectBegin()
	mock.ExpectExec(updateQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	appointment, err := booker.UpdateStatus(context.Background(), "appt-1", "doctor-1",
		models.StatusConfirmed, "Appointment confirmed by doctor")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, appointment.Status)
	assert.Equal(t, "Appointment confirmed by doctor", appointment.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusByOtherDoctorRejected(t *testing.T) {
	booker, mock := newMockBooker(t)

	for _, requested := range []models.AppointmentStatus{
		models.StatusConfirmed, models.StatusCompleted, models.StatusCancelled, models.StatusPending,
	} {
		mock.ExpectQuery(selectQuery).
			WillReturnRows(appointmentRow("appt-1", "patient-1", "doctor-1", "2026-09-02", "10:00", models.StatusPending))

		appointment, err := booker.UpdateStatus(context.Background(), "appt-1", "doctor-2", requested, "")
		assert.ErrorIs(t, err, ErrNotAuthorized, "requested %s", requested)
		assert.Equal(t, models.StatusPending, appointment.Status, "status must be unchanged")
	}
	assert.NoError(t, mock.ExpectationsWereMet(), "no update may be issued")
}

func TestUpdateStatusCancelledToConfirmedRejected(t *testing.T) {
	booker, mock := newMockBooker(t)

	mock.ExpectQuery(selectQuery).
		WillReturnRows(appointmentRow("appt-1", "patient-1", "doctor-1", "2026-09-02", "10:00", models.StatusCancelled))

	appointment, err := booker.UpdateStatus(context.Background(), "appt-1", "doctor-1", models.StatusConfirmed, "")
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusCancelled, appointment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusCompletedToCancelledRejected(t *testing.T) {
	booker, mock := newMockBooker(t)

	mock.ExpectQuery(selectQuery).
		WillReturnRows(appointmentRow("appt-1", "patient-1", "doctor-1", "2026-09-02", "10:00", models.StatusCompleted))

	appointment, err := booker.UpdateStatus(context.Background(), "appt-1", "doctor-1", models.StatusCancelled, "")
	var transitionErr *TransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusCompleted, appointment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusInvalidStatusRejected(t *testing.T) {
	booker, mock := newMockBooker(t)

	mock.ExpectQuery(selectQuery).
		WillReturnRows(appointmentRow("appt-1", "patient-1", "doctor-1", "2026-09-02", "10:00", models.StatusPending))

	appointment, err := booker.UpdateStatus(context.Background(), "appt-1", "doctor-1",
		models.AppointmentStatus("no-show"), "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Equal(t, models.StatusPending, appointment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Reversals outside the two forbidden edges are allowed by the permissive
// transition table.
func TestUpdateStatusPermissiveReversal(t *testing.T) {
	booker, mock := newMockBooker(t)

	mock.ExpectQuery(selectQuery).
		WillReturnRows(appointmentRow("appt-1", "patient-1", "doctor-1", "2026-09-02", "10:00", models.StatusCompleted))
	mock.ExpectBegin()
	mock.ExpectExec(updateQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	appointment, err := booker.UpdateStatus(context.Background(), "appt-1", "doctor-1", models.StatusConfirmed, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, appointment.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Rescheduling excludes the appointment itself from the conflict scan, so
// moving it within its own slot's day works even though the row matches.
func TestRescheduleExcludesSelfFromConflictScan(t *testing.T) {
	booker, mock := newMockBooker(t)

	mock.ExpectBegin()
	mock.ExpectQuery(countQuery).
		WithArgs("doctor-1", "2026-09-03", "11:00", "pending", "confirmed", "appt-1").
		WillReturnRows(countRows(0))
	mock.ExpectExec(updateQuery).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	appointment := &models.Appointment{
		BaseModel:       models.BaseModel{ID: "appt-1"},
		PatientID:       "patient-1",
		DoctorID:        "doctor-1",
		AppointmentDate: "2026-09-02",
		AppointmentTime: "10:00",
		Status:          models.StatusConfirmed,
	}

	updated, err := booker.Reschedule(context.Background(), appointment, "2026-09-03", "11:00", "", testNow)
	require.NoError(t, err)
	assert.Equal(t, "2026-09-03", updated.AppointmentDate)
	assert.Equal(t, "11:00", updated.AppointmentTime)
	assert.Equal(t, models.StatusPending, updated.Status, "reschedule resets status for re-confirmation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRescheduleRejectsOccupiedSlot(t *testing.T) {
	booker, mock := newMockBooker(t)

	mock.ExpectBegin()
	mock.ExpectQuery(countQuery).WillReturnRows(countRows(1))
	mock.ExpectRollback()

	appointment := &models.Appointment{
		BaseModel:       models.BaseModel{ID: "appt-1"},
		PatientID:       "patient-1",
		DoctorID:        "doctor-1",
		AppointmentDate: "2026-09-02",
		AppointmentTime: "10:00",
		Status:          models.StatusPending,
	}

	_, err := booker.Reschedule(context.Background(), appointment, "2026-09-03", "11:00", "", testNow)
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}
