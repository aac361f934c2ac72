package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medverse-server/internal/models"
	"medverse-server/internal/utils"
)

// DoctorDirectory is the read-only lookup used when denormalizing a doctor's
// profile onto an appointment at booking time.
type DoctorDirectory interface {
	DoctorProfile(ctx context.Context, doctorID string) (*models.User, error)
}

type gormDirectory struct {
	db *gorm.DB
}

// NewDoctorDirectory returns the gorm-backed doctor lookup.
func NewDoctorDirectory(db *gorm.DB) DoctorDirectory {
	return &gormDirectory{db: db}
}

func (d *gormDirectory) DoctorProfile(ctx context.Context, doctorID string) (*models.User, error) {
	var doctor models.User
	err := d.db.WithContext(ctx).
		Where("id = ? AND role = ?", doctorID, models.RoleDoctor).
		First(&doctor).Error
	if err != nil {
		return nil, err
	}
	return &doctor, nil
}

// DoctorsHandler serves the public doctors listing.
type DoctorsHandler struct {
	DB *gorm.DB
}

// NewDoctorsHandler creates a new DoctorsHandler.
func NewDoctorsHandler(db *gorm.DB) *DoctorsHandler {
	return &DoctorsHandler{DB: db}
}

// GetDoctors handles fetching all registered doctors, visible to the public.
func (h *DoctorsHandler) GetDoctors(c *gin.Context) {
	var doctors []models.User
	err := h.DB.
		Where("role = ? AND is_registered = ?", models.RoleDoctor, true).
		Find(&doctors).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(doctors))
	for i, doctor := range doctors {
		sanitized[i] = doctor.Sanitize()
	}

	utils.Success(c, "Doctors fetched successfully", sanitized)
}

// GetDoctorByID handles fetching a single doctor's public profile.
func (h *DoctorsHandler) GetDoctorByID(c *gin.Context) {
	doctorID := c.Param("id")

	var doctor models.User
	if err := h.DB.Where("id = ? AND role = ?", doctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Doctor fetched successfully", doctor.Sanitize())
}

// GetDoctorAvailability handles fetching a doctor's weekly availability
// schedule.
func (h *DoctorsHandler) GetDoctorAvailability(c *gin.Context) {
	doctorID := c.Param("id")

	var doctor models.User
	if err := h.DB.Where("id = ? AND role = ?", doctorID, models.RoleDoctor).First(&doctor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	availability := doctor.Availability
	if len(availability) == 0 {
		availability = models.DefaultAvailability()
	}

	utils.Success(c, "Availability fetched successfully", availability)
}
