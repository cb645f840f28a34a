package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/userdeck/userdeck/internal/models"
)

func rolesRouter(actor *models.Account, required ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if actor != nil {
			c.Set(CtxActorKey, *actor)
		}
		c.Next()
	})
	router.GET("/", RequireRole(required...), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestRequireRoleAllowsListedRoles(t *testing.T) {
	actor := &models.Account{ID: 1, Role: models.RoleAdmin}
	router := rolesRouter(actor, models.RoleAdmin, models.RoleSuperadmin)

	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	actor := &models.Account{ID: 1, Role: models.RoleUser}
	router := rolesRouter(actor, models.RoleAdmin, models.RoleSuperadmin)

	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleRejectsMissingActor(t *testing.T) {
	router := rolesRouter(nil, models.RoleAdmin)

	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
