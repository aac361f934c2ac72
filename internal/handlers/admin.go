package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"gorm.io/gorm"

	"medverse-server/internal/booking"
	"medverse-server/internal/middleware"
	"medverse-server/internal/models"
	"medverse-server/internal/utils"
)

// AdminHandler handles the administrative surface: user management,
// appointment oversight, privilege card review and the audit log.
type AdminHandler struct {
	DB      *gorm.DB
	Service *booking.Service
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *gorm.DB, service *booking.Service) *AdminHandler {
	return &AdminHandler{DB: db, Service: service}
}

// audit records an administrative action. Failures are swallowed: the audit
// trail must never fail the operation it describes.
func (h *AdminHandler) audit(c *gin.Context, action, targetType, targetID, details string) {
	actorID, _ := middleware.GetUserIDFromContext(c)
	actorEmail, _ := middleware.GetUserEmailFromContext(c)
	h.DB.Create(&models.Audit{
		Action:     action,
		ActorID:    actorID,
		ActorEmail: actorEmail,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	})
}

// CreateUserRequest represents the request body for creating a user account.
type CreateUserRequest struct {
	FirstName      string `json:"firstName" binding:"required"`
	LastName       string `json:"lastName" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	Role           string `json:"role" binding:"required,oneof=patient doctor admin"`
	Specialization string `json:"specialization"`
}

// CreateUser handles an admin provisioning a new account of any role.
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	if err := h.DB.Where("lower(email) = lower(?)", req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "User already exists with that email")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Role:           models.Role(req.Role),
		Specialization: req.Specialization,
	}
	user.EnsureDoctorDefaults()
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	h.audit(c, "user.create", "User", user.ID, "role="+string(user.Role))
	utils.Created(c, "User created successfully", user.Sanitize())
}

// GetUsers handles the paginated user listing with optional name/email
// search and role filter.
func (h *AdminHandler) GetUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := h.DB.Model(&models.User{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ?", like, like, like)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count users: "+err.Error())
		return
	}

	var users []models.User
	err := query.
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	sanitized := make([]models.UserSanitized, len(users))
	for i, u := range users {
		sanitized[i] = u.Sanitize()
	}

	utils.Success(c, "Users fetched successfully", gin.H{
		"users": sanitized,
		"page":  page,
		"pages": int(math.Ceil(float64(total) / float64(limit))),
		"total": total,
	})
}

// GetUserByID handles fetching a single user.
func (h *AdminHandler) GetUserByID(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user.
type UpdateUserRequest struct {
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email" binding:"omitempty,email"`
	Role           string `json:"role" binding:"omitempty,oneof=patient doctor admin"`
	Phone          string `json:"phone"`
	Specialization string `json:"specialization"`
	IsRegistered   *bool  `json:"isRegistered"`
}

// UpdateUser handles an admin updating a user. When a doctor's name or
// specialization changes, the denormalized snapshot on their appointments is
// re-synced in the same request.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	prevName := user.FullName()
	prevSpecialization := user.Specialization

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.Email != "" && req.Email != user.Email {
		var existingUser models.User
		if err := h.DB.Where("lower(email) = lower(?) AND id != ?", req.Email, user.ID).First(&existingUser).Error; err == nil {
			utils.BadRequest(c, "Email already in use")
			return
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.InternalServerError(c, "Database error checking email: "+err.Error())
			return
		}
		user.Email = req.Email
	}
	if req.Role != "" {
		user.Role = models.Role(req.Role)
	}
	if req.Phone != "" {
		user.Phone = req.Phone
	}
	if req.Specialization != "" {
		user.Specialization = req.Specialization
	}
	if req.IsRegistered != nil {
		user.IsRegistered = *req.IsRegistered
	}
	// A promotion to doctor gets the default schedule, same as CreateUser.
	user.EnsureDoctorDefaults()

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	// Explicit re-sync of the denormalized doctor snapshot.
	if user.Role == models.RoleDoctor && (user.FullName() != prevName || user.Specialization != prevSpecialization) {
		synced, err := h.Service.SyncDoctorProfile(c.Request.Context(), user.ID, user.FullName(), user.Specialization)
		if err != nil {
			utils.InternalServerError(c, "Failed to re-sync appointments: "+err.Error())
			return
		}
		h.audit(c, "doctor.snapshot_sync", "User", user.ID, fmt.Sprintf("appointments=%d", synced))
	}

	h.audit(c, "user.update", "User", user.ID, "")
	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeleteUser handles an admin removing a user account.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	h.audit(c, "user.delete", "User", user.ID, user.Email)
	utils.Success(c, "User removed", nil)
}

// GetAppointments handles the admin appointment listing with optional status
// filter and doctor name/id search.
func (h *AdminHandler) GetAppointments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	query := h.DB.Model(&models.Appointment{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if doctor := c.Query("doctor"); doctor != "" {
		query = query.Where("doctor_name ILIKE ? OR doctor_id = ?", "%"+doctor+"%", doctor)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count appointments: "+err.Error())
		return
	}

	var appts []models.Appointment
	err := query.
		Preload("Patient").
		Order("start_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&appts).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", gin.H{
		"appointments": appts,
		"page":         page,
		"pages":        int(math.Ceil(float64(total) / float64(limit))),
		"total":        total,
	})
}

// CancelAppointment handles an admin cancelling any appointment.
func (h *AdminHandler) CancelAppointment(c *gin.Context) {
	actorID, _ := middleware.GetUserIDFromContext(c)

	appt, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), actorID, models.RoleAdmin)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	h.audit(c, "appointment.cancel", "Appointment", appt.ID, "")
	utils.Success(c, "Appointment cancelled", appt)
}

// RescheduleRequest represents the request body for rescheduling.
type RescheduleRequest struct {
	StartAt time.Time `json:"startAt" binding:"required"`
}

// RescheduleAppointment handles an admin moving an appointment to a new
// slot. A conflicting target slot fails with 409 and leaves the appointment
// unchanged.
func (h *AdminHandler) RescheduleAppointment(c *gin.Context) {
	var req RescheduleRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appt, err := h.Service.Reschedule(c.Request.Context(), c.Param("id"), req.StartAt)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	h.audit(c, "appointment.reschedule", "Appointment", appt.ID, "startAt="+appt.StartAt.Format(time.RFC3339))
	utils.Success(c, "Appointment rescheduled", appt)
}

// ExportAppointments handles exporting every appointment as CSV (default) or
// PDF.
func (h *AdminHandler) ExportAppointments(c *gin.Context) {
	var appts []models.Appointment
	if err := h.DB.Preload("Patient").Order("start_at desc").Find(&appts).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	if c.DefaultQuery("format", "csv") == "pdf" {
		h.exportPDF(c, appts)
		return
	}

	body := "Date,Doctor,Patient,Mode,Status\n"
	for _, a := range appts {
		body += fmt.Sprintf("%s,%s,%s,%s,%s\n",
			a.StartAt.UTC().Format(time.RFC3339), a.DoctorName, a.Patient.FullName(), a.Mode, a.Status)
	}

	c.Header("Content-Disposition", `attachment; filename="appointments.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(body))
}

func (h *AdminHandler) exportPDF(c *gin.Context, appts []models.Appointment) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Appointments")
	pdf.Ln(14)

	pdf.SetFont("Arial", "B", 10)
	headers := []string{"Date (UTC)", "Doctor", "Patient", "Status"}
	widths := []float64{50, 50, 50, 30}
	for i, head := range headers {
		pdf.CellFormat(widths[i], 8, head, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, a := range appts {
		row := []string{
			a.StartAt.UTC().Format("2006-01-02 15:04"),
			a.DoctorName,
			a.Patient.FullName(),
			string(a.Status),
		}
		for i, cell := range row {
			pdf.CellFormat(widths[i], 8, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	c.Header("Content-Disposition", `attachment; filename="appointments.pdf"`)
	c.Header("Content-Type", "application/pdf")
	if err := pdf.Output(c.Writer); err != nil {
		utils.InternalServerError(c, "Failed to render PDF: "+err.Error())
	}
}

// GetPrivilegeApplications handles listing privilege card applications,
// optionally filtered by status.
func (h *AdminHandler) GetPrivilegeApplications(c *gin.Context) {
	query := h.DB.Model(&models.PrivilegeApplication{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []models.PrivilegeApplication
	if err := query.Order("created_at desc").Find(&apps).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch applications: "+err.Error())
		return
	}

	utils.Success(c, "Applications fetched successfully", apps)
}

// PrivilegeDecisionRequest represents the request body for reviewing a
// privilege card application.
type PrivilegeDecisionRequest struct {
	Status string `json:"status" binding:"required,oneof=Approved Rejected Pending"`
}

// DecidePrivilegeApplication handles approving or rejecting an application.
func (h *AdminHandler) DecidePrivilegeApplication(c *gin.Context) {
	var req PrivilegeDecisionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var app models.PrivilegeApplication
	if err := h.DB.First(&app, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Application not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	app.Status = models.PrivilegeStatus(req.Status)
	if err := h.DB.Save(&app).Error; err != nil {
		utils.InternalServerError(c, "Failed to update application: "+err.Error())
		return
	}

	h.audit(c, "privilege.decide", "PrivilegeApplication", app.ID, req.Status)
	utils.Success(c, "Application updated", app)
}

// GetAudits handles the paginated audit log listing, newest first.
func (h *AdminHandler) GetAudits(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := h.DB.Model(&models.Audit{}).Count(&total).Error; err != nil {
		utils.InternalServerError(c, "Failed to count audits: "+err.Error())
		return
	}

	var audits []models.Audit
	err := h.DB.
		Order("created_at desc").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&audits).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch audits: "+err.Error())
		return
	}

	utils.Success(c, "Audits fetched successfully", gin.H{
		"audits": audits,
		"page":   page,
		"pages":  int(math.Ceil(float64(total) / float64(limit))),
		"total":  total,
	})
}
