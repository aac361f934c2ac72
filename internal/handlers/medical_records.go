package handlers

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medverse-server/internal/middleware"
	"medverse-server/internal/models"
	"medverse-server/internal/utils"
)

// MedicalRecordHandler handles patient-owned medical record CRUD.
type MedicalRecordHandler struct {
	DB *gorm.DB
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(db *gorm.DB) *MedicalRecordHandler {
	return &MedicalRecordHandler{DB: db}
}

// GetMedicalRecords handles fetching all of the user's records, newest first.
func (h *MedicalRecordHandler) GetMedicalRecords(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var records []models.MedicalRecord
	if err := h.DB.Where("user_id = ?", userID).Order("date desc").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medical records: "+err.Error())
		return
	}

	utils.Success(c, "Medical records fetched successfully", records)
}

// GetRecordsForPatient handles a doctor or admin reading a specific
// patient's records. The route runs behind RequireRole, so the role read
// here is the database-backed one, not the token claim.
func (h *MedicalRecordHandler) GetRecordsForPatient(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)
	if role != models.RoleDoctor && role != models.RoleAdmin {
		utils.Forbidden(c, "Access denied. Doctors only.")
		return
	}

	var records []models.MedicalRecord
	if err := h.DB.Where("user_id = ?", c.Param("patientId")).Order("date desc").Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medical records: "+err.Error())
		return
	}

	utils.Success(c, "Medical records fetched successfully", records)
}

// CreateMedicalRecordRequest represents the request body for creating a
// medical record.
type CreateMedicalRecordRequest struct {
	RecordType  string `json:"recordType" binding:"required"`
	Title       string `json:"title" binding:"required"`
	DoctorName  string `json:"doctorName" binding:"required"`
	Date        string `json:"date" binding:"required"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
}

// CreateMedicalRecord handles creating a record owned by the authenticated
// user.
func (h *MedicalRecordHandler) CreateMedicalRecord(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateMedicalRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	recordType := models.MedicalRecordType(req.RecordType)
	if !recordType.Valid() {
		utils.BadRequest(c, "Invalid recordType")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		if date, err = time.Parse(time.RFC3339, req.Date); err != nil {
			utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD or RFC3339")
			return
		}
	}

	record := models.MedicalRecord{
		UserID:      userID,
		RecordType:  recordType,
		Title:       req.Title,
		DoctorName:  req.DoctorName,
		Date:        date.UTC(),
		Description: req.Description,
		Notes:       req.Notes,
	}
	if err := h.DB.Create(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to create medical record: "+err.Error())
		return
	}

	utils.Created(c, "Medical record created", record)
}

// GetMedicalRecordByID handles fetching a single record owned by the user.
func (h *MedicalRecordHandler) GetMedicalRecordByID(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var record models.MedicalRecord
	if err := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Medical record fetched successfully", record)
}

// UpdateMedicalRecord handles updating the user's own record.
func (h *MedicalRecordHandler) UpdateMedicalRecord(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var record models.MedicalRecord
	if err := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req CreateMedicalRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.RecordType != "" {
		recordType := models.MedicalRecordType(req.RecordType)
		if !recordType.Valid() {
			utils.BadRequest(c, "Invalid recordType")
			return
		}
		record.RecordType = recordType
	}
	if req.Title != "" {
		record.Title = req.Title
	}
	if req.DoctorName != "" {
		record.DoctorName = req.DoctorName
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		record.Date = date.UTC()
	}
	if req.Description != "" {
		record.Description = req.Description
	}
	if req.Notes != "" {
		record.Notes = req.Notes
	}

	if err := h.DB.Save(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to update medical record: "+err.Error())
		return
	}

	utils.Success(c, "Medical record updated", record)
}

// DeleteMedicalRecord handles deleting the user's own record.
func (h *MedicalRecordHandler) DeleteMedicalRecord(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	res := h.DB.Delete(&models.MedicalRecord{}, "id = ? AND user_id = ?", c.Param("id"), userID)
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to delete medical record: "+res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Medical record not found")
		return
	}

	utils.Success(c, "Medical record deleted", nil)
}
