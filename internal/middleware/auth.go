package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"medverse-server/internal/config"
	"medverse-server/internal/models"
	"medverse-server/internal/utils"
)

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		tokenString := parts[1]
		claims, err := utils.ValidateToken(tokenString, cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		// Set user information in context for downstream handlers. The role
		// here comes from the token and is only a hint; RequireRole reads
		// the current role from the database.
		c.Set("userID", claims.UserID)
		c.Set("userEmail", claims.Email)
		c.Set("userRole", claims.Role)

		c.Next()
	}
}

// UserSource looks up the current user record backing a role check. The
// production implementation reads the database; tests substitute a fake.
type UserSource interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
}

type gormUserSource struct {
	db *gorm.DB
}

// NewUserSource returns the gorm-backed user lookup used by RequireRole.
func NewUserSource(db *gorm.DB) UserSource {
	return &gormUserSource{db: db}
}

func (s *gormUserSource) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// RequireRole creates a middleware for role-based authorization. It must run
// after AuthMiddleware. The user's role is re-fetched through the UserSource
// so a role change takes effect immediately, at the cost of one extra lookup.
func RequireRole(users UserSource, allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserIDFromContext(c)
		if !exists {
			utils.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		user, err := users.FindUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.Unauthorized(c, "User not found")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			c.Abort()
			return
		}

		isAllowed := false
		for _, allowedRole := range allowedRoles {
			if user.Role == allowedRole {
				isAllowed = true
				break
			}
		}

		if !isAllowed {
			utils.Forbidden(c, "Insufficient permissions")
			c.Abort()
			return
		}

		// Replace the token hint with the authoritative role and attach the
		// display name for handlers that denormalize it.
		c.Set("userRole", user.Role)
		c.Set("userName", user.FullName())

		c.Next()
	}
}

// Helper function to get user ID from context
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", false
	}
	idStr, ok := userID.(string)
	return idStr, ok
}

// Helper function to get user role from context
func GetUserRoleFromContext(c *gin.Context) (models.Role, bool) {
	userRole, exists := c.Get("userRole")
	if !exists {
		return "", false
	}
	role, ok := userRole.(models.Role)
	return role, ok
}

// Helper function to get the user email from context
func GetUserEmailFromContext(c *gin.Context) (string, bool) {
	email, exists := c.Get("userEmail")
	if !exists {
		return "", false
	}
	emailStr, ok := email.(string)
	return emailStr, ok
}
