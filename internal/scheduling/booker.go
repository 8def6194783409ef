package scheduling

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"clinic-app-server/internal/models"
)

// Layouts for the civil date and time-of-day fields. Both orderings are
// lexicographic, so string comparison matches chronological comparison.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// BookingRequest is a proposed appointment. Identities are already resolved
// and scheduling fields already format-validated by the caller.
type BookingRequest struct {
	PatientID string
	DoctorID  string
	Date      string
	Time      string
	Reason    string
}

// Booker validates and persists appointments and governs their status
// lifecycle. The conflict check and insert run inside a transaction with the
// candidate rows locked, and submissions for the same doctor are additionally
// serialized in-process, so at most one active appointment can ever hold a
// (doctor, date, time) slot.
type Booker struct {
	db *gorm.DB

	mu      sync.Mutex
	doctors map[string]*sync.Mutex
}

// NewBooker creates a new Booker.
func NewBooker(db *gorm.DB) *Booker {
	return &Booker{db: db, doctors: make(map[string]*sync.Mutex)}
}

// doctorLock returns the mutex serializing submissions for one doctor.
func (b *Booker) doctorLock(doctorID string) *sync.Mutex {
	b.mu.Lock()
	defer b.mu.Unlock()
	lock, ok := b.doctors[doctorID]
	if !ok {
		lock = &sync.Mutex{}
		b.doctors[doctorID] = lock
	}
	return lock
}

// validateSlotTime rejects slots lying in the past relative to now.
func validateSlotTime(date, timeOfDay string, now time.Time) error {
	nowDate := now.Format(DateLayout)
	if date < nowDate {
		return ErrPastDate
	}
	if date == nowDate && timeOfDay < now.Format(TimeLayout) {
		return ErrPastTime
	}
	return nil
}

// slotTaken reports whether an active appointment already holds the slot.
// It locks matching rows so a concurrent submission in another process
// cannot pass the check until this transaction commits.
func slotTaken(tx *gorm.DB, doctorID, date, timeOfDay, excludeID string) (bool, error) {
	query := tx.Model(&models.Appointment{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ?", doctorID, date, timeOfDay).
		Where("status IN ?", []models.AppointmentStatus{models.StatusPending, models.StatusConfirmed})
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Book validates a proposed appointment and persists it in pending status.
// Validation short-circuits on the first failure: past date, then past time
// on today's date, then slot conflict. now is injected so the validator
// stays deterministic.
func (b *Booker) Book(ctx context.Context, req BookingRequest, now time.Time) (*models.Appointment, error) {
	if err := validateSlotTime(req.Date, req.Time, now); err != nil {
		return nil, err
	}

	lock := b.doctorLock(req.DoctorID)
	lock.Lock()
	defer lock.Unlock()

	appointment := &models.Appointment{
		PatientID:       req.PatientID,
		DoctorID:        req.DoctorID,
		AppointmentDate: req.Date,
		AppointmentTime: req.Time,
		Reason:          req.Reason,
		Status:          models.StatusPending,
		Notes:           "",
	}

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := slotTaken(tx, req.DoctorID, req.Date, req.Time, "")
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}
		return tx.Create(appointment).Error
	})
	if err != nil {
		return nil, err
	}

	return appointment, nil
}

// UpdateStatus performs a status transition on behalf of the assigned doctor
// and replaces the notes. On any rejection the appointment is returned
// unchanged alongside the error.
func (b *Booker) UpdateStatus(ctx context.Context, appointmentID, requesterID string, status models.AppointmentStatus, notes string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := b.db.WithContext(ctx).First(&appointment, "id = ?", appointmentID).Error; err != nil {
		return nil, err
	}

	if appointment.DoctorID != requesterID {
		return &appointment, ErrNotAuthorized
	}
	if err := CheckTransition(appointment.Status, status); err != nil {
		return &appointment, err
	}

	appointment.Status = status
	appointment.Notes = notes
	if err := b.db.WithContext(ctx).Save(&appointment).Error; err != nil {
		return nil, err
	}

	return &appointment, nil
}

// Reschedule moves an appointment to a new slot, re-running the full booking
// validation with the appointment itself excluded from the conflict scan.
// The status resets to pending for the doctor to re-confirm. Participant
// authorization is the caller's responsibility.
func (b *Booker) Reschedule(ctx context.Context, appointment *models.Appointment, date, timeOfDay, notes string, now time.Time) (*models.Appointment, error) {
	if err := validateSlotTime(date, timeOfDay, now); err != nil {
		return appointment, err
	}

	lock := b.doctorLock(appointment.DoctorID)
	lock.Lock()
	defer lock.Unlock()

	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := slotTaken(tx, appointment.DoctorID, date, timeOfDay, appointment.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrSlotTaken
		}

		appointment.AppointmentDate = date
		appointment.AppointmentTime = timeOfDay
		appointment.Status = models.StatusPending
		if notes != "" {
			appointment.Notes = notes
		}
		return tx.Save(appointment).Error
	})
	if err != nil {
		return appointment, err
	}

	return appointment, nil
}
