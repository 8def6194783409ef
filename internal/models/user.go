package models

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role enum
type Role string

const (
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// User represents a user in the system
type User struct {
	BaseModel
	Email       string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password    string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName   string `gorm:"size:100" json:"firstName"`
	LastName    string `gorm:"size:100" json:"lastName"`
	Role        Role   `gorm:"size:20;default:'patient'" json:"role"`
	PhoneNumber string `gorm:"size:15" json:"phoneNumber,omitempty"`

	// Relations (not always preloaded)
	RefreshTokens       []RefreshToken        `gorm:"foreignKey:UserID" json:"-"`
	DoctorAppointments  []Appointment         `gorm:"foreignKey:DoctorID" json:"-"`
	PatientAppointments []Appointment         `gorm:"foreignKey:PatientID" json:"-"`
	Predictions         []InsurancePrediction `gorm:"foreignKey:UserID" json:"-"`
}

// PatientProfile holds the patient-specific half of a user identity.
type PatientProfile struct {
	BaseModel
	UserID           string     `gorm:"size:36;uniqueIndex" json:"userId"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	Address          string     `gorm:"type:text" json:"address,omitempty"`
	EmergencyContact string     `gorm:"size:15" json:"emergencyContact,omitempty"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// DoctorProfile holds the doctor-specific half of a user identity.
type DoctorProfile struct {
	BaseModel
	UserID          string  `gorm:"size:36;uniqueIndex" json:"userId"`
	Specialization  string  `gorm:"size:100;not null" json:"specialization"`
	LicenseNumber   string  `gorm:"size:50;uniqueIndex;not null" json:"licenseNumber"`
	ExperienceYears int     `gorm:"default:0" json:"experienceYears"`
	ConsultationFee float64 `gorm:"type:decimal(10,2);default:0" json:"consultationFee"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// Identity is a user resolved to exactly one role profile. Handlers resolve
// it once after authentication instead of probing for profiles ad hoc.
type Identity struct {
	User    User
	Patient *PatientProfile
	Doctor  *DoctorProfile
}

// IsDoctor reports whether the identity carries a doctor profile.
func (i *Identity) IsDoctor() bool { return i.Doctor != nil }

// IsPatient reports whether the identity carries a patient profile.
func (i *Identity) IsPatient() bool { return i.Patient != nil }

// ResolveIdentity loads a user and its single role profile.
func ResolveIdentity(db *gorm.DB, userID string) (*Identity, error) {
	var user User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}

	identity := &Identity{User: user}
	switch user.Role {
	case RolePatient:
		var profile PatientProfile
		if err := db.First(&profile, "user_id = ?", userID).Error; err != nil {
			return nil, err
		}
		identity.Patient = &profile
	case RoleDoctor:
		var profile DoctorProfile
		if err := db.First(&profile, "user_id = ?", userID).Error; err != nil {
			return nil, err
		}
		identity.Doctor = &profile
	default:
		return nil, errors.New("user has no role profile")
	}

	return identity, nil
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Role        Role      `json:"role"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
