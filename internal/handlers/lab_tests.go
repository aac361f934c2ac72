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

// LabTestHandler handles patient-owned lab test CRUD.
type LabTestHandler struct {
	DB *gorm.DB
}

// NewLabTestHandler creates a new LabTestHandler.
func NewLabTestHandler(db *gorm.DB) *LabTestHandler {
	return &LabTestHandler{DB: db}
}

// GetLabTests handles fetching all of the user's lab tests, newest first.
func (h *LabTestHandler) GetLabTests(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var tests []models.LabTest
	if err := h.DB.Where("user_id = ?", userID).Order("test_date desc").Find(&tests).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch lab tests: "+err.Error())
		return
	}

	utils.Success(c, "Lab tests fetched successfully", tests)
}

// CreateLabTestRequest represents the request body for creating a lab test.
type CreateLabTestRequest struct {
	TestName    string `json:"testName" binding:"required"`
	TestDate    string `json:"testDate" binding:"required"`
	Status      string `json:"status"`
	Result      string `json:"result"`
	NormalRange string `json:"normalRange"`
	Notes       string `json:"notes"`
}

// CreateLabTest handles creating a lab test owned by the authenticated user.
func (h *LabTestHandler) CreateLabTest(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var req CreateLabTestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	testDate, err := time.Parse("2006-01-02", req.TestDate)
	if err != nil {
		if testDate, err = time.Parse(time.RFC3339, req.TestDate); err != nil {
			utils.BadRequest(c, "Invalid testDate, expected YYYY-MM-DD or RFC3339")
			return
		}
	}

	status := models.LabTestStatus(req.Status)
	if status == "" {
		status = models.LabTestPending
	}

	test := models.LabTest{
		UserID:      userID,
		TestName:    req.TestName,
		TestDate:    testDate.UTC(),
		Status:      status,
		Result:      req.Result,
		NormalRange: req.NormalRange,
		Notes:       req.Notes,
	}
	if err := h.DB.Create(&test).Error; err != nil {
		utils.InternalServerError(c, "Failed to create lab test: "+err.Error())
		return
	}

	utils.Created(c, "Lab test created", test)
}

// GetLabTestByID handles fetching a single lab test owned by the user.
func (h *LabTestHandler) GetLabTestByID(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var test models.LabTest
	if err := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&test).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Lab test not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Lab test fetched successfully", test)
}

// UpdateLabTest handles updating the user's own lab test.
func (h *LabTestHandler) UpdateLabTest(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var test models.LabTest
	if err := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&test).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "Lab test not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var req CreateLabTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	if req.TestName != "" {
		test.TestName = req.TestName
	}
	if req.TestDate != "" {
		testDate, err := time.Parse("2006-01-02", req.TestDate)
		if err != nil {
			utils.BadRequest(c, "Invalid testDate, expected YYYY-MM-DD")
			return
		}
		test.TestDate = testDate.UTC()
	}
	if req.Status != "" {
		test.Status = models.LabTestStatus(req.Status)
	}
	if req.Result != "" {
		test.Result = req.Result
	}
	if req.NormalRange != "" {
		test.NormalRange = req.NormalRange
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

// DeleteLabTest handles deleting the user's own lab test.
func (h *LabTestHandler) DeleteLabTest(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	res := h.DB.Delete(&models.LabTest{}, "id = ? AND user_id = ?", c.Param("id"), userID)
	if res.Error != nil {
		utils.InternalServerError(c, "Failed to delete lab test: "+res.Error.Error())
		return
	}
	if res.RowsAffected == 0 {
		utils.NotFound(c, "Lab test not found")
		return
	}

	utils.Success(c, "Lab test deleted", nil)
}
