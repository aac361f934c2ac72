package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medverse-server/internal/middleware"
	"medverse-server/internal/models"
	"medverse-server/internal/utils"
)

// ContactHandler handles public feedback submissions.
type ContactHandler struct {
	DB *gorm.DB
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(db *gorm.DB) *ContactHandler {
	return &ContactHandler{DB: db}
}

// SubmitFeedbackRequest represents the contact form body.
type SubmitFeedbackRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message" binding:"required,min=10"`
}

// SubmitFeedback handles a contact form submission. When the caller is
// authenticated the feedback is linked to their account.
func (h *ContactHandler) SubmitFeedback(c *gin.Context) {
	var req SubmitFeedbackRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)

	feedback := models.Feedback{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: req.Message,
		UserID:  userID,
	}
	if err := h.DB.Create(&feedback).Error; err != nil {
		utils.InternalServerError(c, "Failed to submit feedback: "+err.Error())
		return
	}

	utils.Created(c, "Feedback submitted", feedback)
}
