package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// UserHandler handles user directory requests.
type UserHandler struct {
	DB *gorm.DB
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB) *UserHandler {
	return &UserHandler{DB: db}
}

// DoctorListing pairs a sanitized doctor user with its profile for the
// booking form.
type DoctorListing struct {
	models.UserSanitized
	Specialization  string  `json:"specialization"`
	ExperienceYears int     `json:"experienceYears"`
	ConsultationFee float64 `json:"consultationFee"`
}

// GetDoctors handles fetching all doctors with their profiles. Accessible by
// all authenticated users; patients use it to pick a doctor when booking.
func (h *UserHandler) GetDoctors(c *gin.Context) {
	var doctors []models.User
	if err := h.DB.Where("role = ?", models.RoleDoctor).Order("last_name asc").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	listings := make([]DoctorListing, 0, len(doctors))
	for _, doctor := range doctors {
		listing := DoctorListing{UserSanitized: doctor.Sanitize()}

		var profile models.DoctorProfile
		err := h.DB.Where("user_id = ?", doctor.ID).First(&profile).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerError(c, "Failed to fetch doctor profile: "+err.Error())
			return
		}
		if err == nil {
			listing.Specialization = profile.Specialization
			listing.ExperienceYears = profile.ExperienceYears
			listing.ConsultationFee = profile.ConsultationFee
		}

		listings = append(listings, listing)
	}

	utils.Success(c, "Doctors fetched successfully", listings)
}
