package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medverse-server/internal/config"
	"medverse-server/internal/middleware"
	"medverse-server/internal/models"
	"medverse-server/internal/utils"
)

// PrivilegeHandler handles privilege card applications.
type PrivilegeHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewPrivilegeHandler creates a new PrivilegeHandler.
func NewPrivilegeHandler(db *gorm.DB, cfg *config.Config) *PrivilegeHandler {
	return &PrivilegeHandler{DB: db, Cfg: cfg}
}

// GetMyApplication handles fetching the authenticated user's application.
func (h *PrivilegeHandler) GetMyApplication(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var app models.PrivilegeApplication
	if err := h.DB.First(&app, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFound(c, "No privilege card found for this user")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	utils.Success(c, "Privilege application fetched successfully", app)
}

// Apply handles submitting a privilege card application. The request is
// multipart/form-data with name, email, familyMembers and an optional
// idProof file.
func (h *PrivilegeHandler) Apply(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	name := c.PostForm("name")
	email := c.PostForm("email")
	if name == "" || email == "" {
		utils.BadRequest(c, "Name and email are required")
		return
	}
	familyMembers, err := strconv.Atoi(c.PostForm("familyMembers"))
	if err != nil || familyMembers < 0 || familyMembers > 4 {
		utils.BadRequest(c, "familyMembers must be a number between 0 and 4")
		return
	}

	// One application per user.
	var existing models.PrivilegeApplication
	if err := h.DB.First(&existing, "user_id = ?", userID).Error; err == nil {
		utils.BadRequest(c, "An application already exists for this user")
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	idProofURL := ""
	if file, err := c.FormFile("idProof"); err == nil {
		idProofURL, err = utils.SaveUpload(c, file, h.Cfg.UploadDir)
		if err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
	}

	app := models.PrivilegeApplication{
		UserID:        userID,
		Name:          name,
		Email:         email,
		FamilyMembers: familyMembers,
		IDProofURL:    idProofURL,
		Status:        models.PrivilegePending,
	}
	if err := h.DB.Create(&app).Error; err != nil {
		utils.InternalServerError(c, "Failed to submit application: "+err.Error())
		return
	}

	utils.Created(c, "Application submitted successfully", app)
}
