package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medverse-server/internal/booking"
	"medverse-server/internal/config"
	"medverse-server/internal/middleware"
	"medverse-server/internal/models"
	"medverse-server/internal/utils"
)

// DoctorPortalHandler handles the doctor-facing surface: day schedule,
// appointment status transitions, report uploads and lab test updates.
type DoctorPortalHandler struct {
	DB      *gorm.DB
	Service *booking.Service
	Cfg     *config.Config
}

// NewDoctorPortalHandler creates a new DoctorPortalHandler.
func NewDoctorPortalHandler(db *gorm.DB, service *booking.Service, cfg *config.Config) *DoctorPortalHandler {
	return &DoctorPortalHandler{DB: db, Service: service, Cfg: cfg}
}

// GetSchedule handles fetching the doctor's appointments. With a date query
// parameter it returns that day's non-cancelled appointments (UTC window);
// without one it returns the full list.
func (h *DoctorPortalHandler) GetSchedule(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			utils.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		appts, err := h.Service.DaySchedule(c.Request.Context(), doctorID, date)
		if err != nil {
			utils.InternalServerError(c, "Failed to fetch schedule: "+err.Error())
			return
		}
		utils.Success(c, "Schedule fetched successfully", appts)
		return
	}

	var appts []models.Appointment
	err := h.DB.Preload("Patient").
		Where("doctor_id = ?", doctorID).
		Order("start_at asc").
		Find(&appts).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}
	utils.Success(c, "Appointments fetched successfully", appts)
}

// ConfirmAppointment handles a doctor confirming an appointment request,
// setting it back to Scheduled.
func (h *DoctorPortalHandler) ConfirmAppointment(c *gin.Context) {
	h.transition(c, models.StatusScheduled)
}

// RejectAppointment handles a doctor rejecting an appointment, which is
// modeled as Cancelled and frees the slot.
func (h *DoctorPortalHandler) RejectAppointment(c *gin.Context) {
	h.transition(c, models.StatusCancelled)
}

// UpdateStatusRequest represents the request body for a status update.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAppointmentStatus handles a doctor setting an arbitrary status from
// the allowed set on their own appointment.
func (h *DoctorPortalHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	h.transition(c, models.AppointmentStatus(req.Status))
}

func (h *DoctorPortalHandler) transition(c *gin.Context, status models.AppointmentStatus) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Service.TransitionStatus(c.Request.Context(), c.Param("id"), doctorID, status)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Success(c, "Status updated", appt)
}

// UploadReport handles a doctor attaching a report file to one of their
// appointments. The upload becomes a Report medical record owned by the
// patient, and the appointment is marked Completed.
func (h *DoctorPortalHandler) UploadReport(c *gin.Context) {
	doctorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var appt models.Appointment
	if err := h.DB.First(&appt, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	if appt.DoctorID != doctorID {
		utils.Forbidden(c, "Not your appointment")
		return
	}

	title := c.DefaultPostForm("title", "Lab Report")
	notes := c.PostForm("notes")

	fileURL := ""
	if file, err := c.FormFile("file"); err == nil {
		fileURL, err = utils.SaveUpload(c, file, h.Cfg.UploadDir)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
	}

	doctorName, _ := c.Get("userName")
	name, _ := doctorName.(string)
	if name == "" {
		name = appt.DoctorName
	}

	record := models.MedicalRecord{
		UserID:      appt.PatientID,
		RecordType:  models.RecordReport,
		Title:       title,
		DoctorName:  name,
		Date:        time.Now().UTC(),
		Description: notes,
		FileURL:     fileURL,
	}
	if err := h.DB.Create(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to create medical record: "+err.Error())
		return
	}

	if _, err := h.Service.TransitionStatus(c.Request.Context(), appt.ID, doctorID, models.StatusCompleted); err != nil {
		utils.InternalServerError(c, "Failed to mark appointment completed: "+err.Error())
		return
	}

	utils.Success(c, "Report uploaded", record)
}

// UpdateLabTestRequest represents the request body for a doctor updating a
// lab test.
type UpdateLabTestRequest struct {
	Status string `json:"status"`
	Result string `json:"result"`
	Notes  string `json:"notes"`
}

// UpdateLabTest handles a doctor updating the status, result or notes of a
// lab test.
func (h *DoctorPortalHandler) UpdateLabTest(c *gin.Context) {
	var req UpdateLabTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var test models.LabTest
	if err := h.DB.First(&test, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Lab test not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if req.Status != "" {
		test.Status = models.LabTestStatus(req.Status)
	}
	if req.Result != "" {
		test.Result = req.Result
	}
	if req.Notes != "" {
		test.Notes = req.Notes
	}

	if err := h.DB.Save(&test).Error; err != nil {
		utils.InternalServerError(c, "Failed to update lab test: "+err.Error())
		return
	}

	utils.Success(c, "Lab test updated", test)
}

// GetPatientDetails handles fetching the basic profile of a patient.
func (h *DoctorPortalHandler) GetPatientDetails(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Patient details fetched successfully", user.Sanitize())
}

// GetPatientPrivilege handles looking up a patient's privilege card
// application.
func (h *DoctorPortalHandler) GetPatientPrivilege(c *gin.Context) {
	var app models.PrivilegeApplication
	if err := h.DB.First(&app, "user_id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "No privilege application found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Privilege application fetched successfully", app)
}
