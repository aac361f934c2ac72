package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"medverse-server/internal/models"
)

// fakeUserSource serves user lookups from a map, standing in for the
// database behind RequireRole.
type fakeUserSource struct {
	users map[string]*models.User
}

func (f *fakeUserSource) FindUser(ctx context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func sourceWith(id string, role models.Role) *fakeUserSource {
	user := &models.User{FirstName: "Test", LastName: "User", Role: role}
	user.ID = id
	return &fakeUserSource{users: map[string]*models.User{id: user}}
}

// claimRole injects the auth context the way AuthMiddleware does, with the
// role taken from the token.
func claimRole(userID string, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userEmail", userID+"@example.com")
		c.Set("userRole", role)
		c.Next()
	}
}

func roleGatedRouter(tokenRole models.Role, source UserSource, allowed ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected",
		claimRole("user-1", tokenRole),
		RequireRole(source, allowed...),
		func(c *gin.Context) {
			role, _ := GetUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"role": role})
		})
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRequireRoleIgnoresTokenClaim(t *testing.T) {
	// The token still says admin, but the current record says patient.
	router := roleGatedRouter(models.RoleAdmin, sourceWith("user-1", models.RolePatient),
		models.RoleDoctor, models.RoleAdmin)

	rec := get(router, "/protected")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleReplacesContextRole(t *testing.T) {
	// The token role is stale the other way: it says patient, the record
	// says doctor. The request passes and downstream sees the current role.
	router := roleGatedRouter(models.RolePatient, sourceWith("user-1", models.RoleDoctor),
		models.RoleDoctor)

	rec := get(router, "/protected")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"doctor"`)
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	router := roleGatedRouter(models.RoleAdmin, sourceWith("user-1", models.RoleAdmin),
		models.RoleAdmin)

	rec := get(router, "/protected")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleUnknownUser(t *testing.T) {
	// A valid token for a since-deleted account is rejected outright.
	router := roleGatedRouter(models.RoleAdmin, &fakeUserSource{users: map[string]*models.User{}},
		models.RoleAdmin)

	rec := get(router, "/protected")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleWithoutAuthContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected",
		RequireRole(sourceWith("user-1", models.RoleAdmin), models.RoleAdmin),
		func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := get(router, "/protected")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
