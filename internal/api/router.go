package api

import (
	"fmt"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/userdeck/userdeck/internal/app"
	iauth "github.com/userdeck/userdeck/internal/auth"
	"github.com/userdeck/userdeck/internal/handlers"
	"github.com/userdeck/userdeck/internal/middleware"
	"github.com/userdeck/userdeck/internal/models"
	"github.com/userdeck/userdeck/internal/services"
	"github.com/userdeck/userdeck/web"
)

// NewRouter builds the Gin engine, wires middleware and registers all routes.
func NewRouter(accounts *services.AccountService, jwt *iauth.JWTService, cfg *app.Config) (*gin.Engine, error) {
	if accounts == nil {
		return nil, fmt.Errorf("account service must be provided")
	}
	if jwt == nil {
		return nil, fmt.Errorf("jwt service must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.WithRequestID())
	r.Use(middleware.Observe())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS())
	if cfg.Server.RateLimit.Enabled {
		r.Use(middleware.RateLimit(cfg.Server.RateLimit.MaxRequests, cfg.Server.RateLimit.Window))
	}

	// Health endpoint (public)
	r.GET("/health", handlers.Health())

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if strings.TrimSpace(endpoint) == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	authHandler := handlers.NewAuthHandler(accounts, jwt)
	userHandler := handlers.NewUserHandler(accounts)

	// Public auth routes
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
	}

	// Protected routes
	requireAuth := middleware.Auth(jwt, accounts)

	api := r.Group("/api")
	api.Use(requireAuth)

	api.GET("/auth/me", authHandler.Me)

	manageRoles := []models.Role{models.RoleAdmin, models.RoleSuperadmin}

	users := api.Group("/users")
	{
		users.GET("", userHandler.List)
		users.GET("/search", userHandler.Search)
		users.GET("/statistics", userHandler.Statistics)
		users.POST("", middleware.RequireRole(manageRoles...), userHandler.Create)
		users.DELETE("/:id", middleware.RequireRole(manageRoles...), userHandler.Delete)
		users.PATCH("/:id/role", middleware.RequireRole(models.RoleSuperadmin), userHandler.ChangeRole)
	}

	if err := mountStatic(r); err != nil {
		return nil, err
	}

	return r, nil
}

// mountStatic serves the embedded dashboard with an index fallback so client
// side routes resolve after a page refresh.
func mountStatic(r *gin.Engine) error {
	staticFS, err := web.FS()
	if err != nil {
		return fmt.Errorf("load embedded frontend: %w", err)
	}

	fileServer := http.FileServer(http.FS(staticFS))

	r.NoRoute(func(c *gin.Context) {
		path := strings.TrimPrefix(c.Request.URL.Path, "/")
		if strings.HasPrefix(path, "api/") {
			middleware.NotFoundHandler(c)
			return
		}

		if path != "" {
			if _, err := fs.Stat(staticFS, path); err == nil {
				fileServer.ServeHTTP(c.Writer, c.Request)
				return
			}
		}

		c.Request.URL.Path = "/"
		fileServer.ServeHTTP(c.Writer, c.Request)
	})

	return nil
}
