package handlers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medverse-server/internal/booking"
	"medverse-server/internal/middleware"
	"medverse-server/internal/models"
	"medverse-server/internal/utils"
)

// AppointmentHandler handles the patient-facing appointment surface.
type AppointmentHandler struct {
	Service   *booking.Service
	Directory DoctorDirectory
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(service *booking.Service, directory DoctorDirectory) *AppointmentHandler {
	return &AppointmentHandler{Service: service, Directory: directory}
}

// BookAppointmentRequest represents the request body for booking a slot.
// Date and Time are combined into a UTC timestamp at minute granularity.
type BookAppointmentRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	Mode     string `json:"mode" binding:"required"`
	Date     string `json:"date" binding:"required"`
	Time     string `json:"time" binding:"required"`
}

// BookAppointment handles a patient booking an appointment slot.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	startAt, err := parseSlot(req.Date, req.Time)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if startAt.Before(time.Now()) {
		utils.BadRequest(c, "Appointment time must be in the future")
		return
	}

	// Denormalize the doctor's name and specialization from the profile
	// rather than trusting client-supplied values.
	doctor, err := h.Directory.DoctorProfile(c.Request.Context(), req.DoctorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error verifying doctor: "+err.Error())
		}
		return
	}

	appt, err := h.Service.Book(c.Request.Context(), booking.BookInput{
		PatientID:      patientID,
		DoctorID:       doctor.ID,
		DoctorName:     doctor.FullName(),
		Specialization: doctor.Specialization,
		Mode:           models.AppointmentMode(req.Mode),
		StartAt:        startAt,
	})
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appt)
}

// GetAppointments handles fetching the authenticated patient's appointment
// history, paginated, newest first.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	patientID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	appts, total, err := h.Service.History(c.Request.Context(), patientID, page, limit)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", gin.H{
		"appointments":      appts,
		"currentPage":       page,
		"totalPages":        int(math.Ceil(float64(total) / float64(max(limit, 1)))),
		"totalAppointments": total,
	})
}

// GetBookedSlots handles fetching the taken time slots of a doctor's day, so
// the booking UI can gray them out.
func (h *AppointmentHandler) GetBookedSlots(c *gin.Context) {
	doctorID := c.Query("doctorId")
	if doctorID == "" {
		utils.BadRequest(c, "doctorId is required")
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		utils.Success(c, "Booked slots fetched successfully", []string{})
		return
	}
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		utils.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
		return
	}

	slots, err := h.Service.BookedSlots(c.Request.Context(), doctorID, date)
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch booked slots: "+err.Error())
		return
	}

	utils.Success(c, "Booked slots fetched successfully", slots)
}

// CancelAppointment handles a patient cancelling their own appointment. The
// lookup is always owner-scoped; the token's role claim is not consulted, so
// a stale admin or doctor token gets no extra reach here. Admin and doctor
// cancellations go through their own role-gated routes.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	actorID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	appt, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), actorID, models.RolePatient)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appt)
}

// respondBookingError maps booking service errors onto the HTTP taxonomy.
func respondBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, booking.ErrSlotTaken):
		utils.Conflict(c, "This time slot is already booked. Please choose another time.")
	case errors.Is(err, booking.ErrNotFound):
		utils.NotFound(c, "Appointment not found")
	case errors.Is(err, booking.ErrNotYours):
		utils.Forbidden(c, "Not your appointment")
	case errors.Is(err, booking.ErrInvalidStatus), errors.Is(err, booking.ErrInvalidMode):
		utils.BadRequest(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}

// parseSlot combines a YYYY-MM-DD date and HH:MM time into a UTC timestamp.
func parseSlot(dateStr, timeStr string) (time.Time, error) {
	slot, err := time.Parse("2006-01-02 15:04", dateStr+" "+timeStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time, expected YYYY-MM-DD and HH:MM")
	}
	return slot.UTC(), nil
}
