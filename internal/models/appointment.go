package models

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ValidStatus reports whether s is one of the four enumerated statuses.
func ValidStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether an appointment in this status occupies its slot.
// Completed and cancelled appointments free the slot.
func (s AppointmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// Appointment represents a scheduled medical appointment. The slot is a civil
// date plus a time of day with no timezone; at most one active appointment
// may hold a given (doctor, date, time) slot.
type Appointment struct {
	BaseModel
	PatientID       string            `gorm:"size:36;index" json:"patientId"`
	DoctorID        string            `gorm:"size:36;index:idx_doctor_slot" json:"doctorId"`
	AppointmentDate string            `gorm:"size:10;index:idx_doctor_slot" json:"appointmentDate"` // YYYY-MM-DD
	AppointmentTime string            `gorm:"size:5;index:idx_doctor_slot" json:"appointmentTime"`  // HH:MM
	Reason          string            `gorm:"type:text" json:"reason"`
	Status          AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes"`

	// Relations
	Patient User `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  User `gorm:"foreignKey:DoctorID" json:"-"`
}
