// Package router maps HTTP routes onto the controllers.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finance-tracker/platform/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/platform/internal/integration/entrypoint/middleware"
)

// Handlers are the components the routes dispatch to. A nil Metrics leaves
// /metrics unregistered.
type Handlers struct {
	Health       *controller.HealthController
	Metrics      http.Handler
	Auth         *controller.AuthController
	Categories   *controller.CategoryController
	LoginLimiter *middleware.RateLimiter
	Authenticate *middleware.Authenticator
}

// Router builds the Gin engine.
type Router struct {
	h      Handlers
	engine *gin.Engine
}

func NewRouter(h Handlers) *Router {
	return &Router{h: h}
}

// Setup builds the engine for environment. "test" disables request logging.
func (r *Router) Setup(environment string) *gin.Engine {
	switch environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	if environment != "test" {
		r.engine.Use(gin.Logger())
	}

	r.engine.GET("/health", r.h.Health.Check)
	r.engine.GET("/debug/packages", r.h.Health.Packages)
	if r.h.Metrics != nil {
		r.engine.GET("/metrics", gin.WrapH(r.h.Metrics))
	}

	v1 := r.engine.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", r.h.Auth.Register)
	auth.POST("/login", r.h.LoginLimiter.Handler(), r.h.Auth.Login)
	auth.POST("/refresh", r.h.Auth.Refresh)
	auth.POST("/logout", r.h.Auth.Logout)
	auth.POST("/forgot-password", r.h.Auth.ForgotPassword)
	auth.POST("/reset-password", r.h.Auth.ResetPassword)
	auth.GET("/password-requirements", r.h.Auth.PasswordRequirements)

	authenticated := r.h.Authenticate.Handler()

	users := v1.Group("/users", authenticated)
	users.DELETE("/me", r.h.Auth.DeleteAccount)

	categories := v1.Group("/categories", authenticated)
	categories.GET("", r.h.Categories.List)
	categories.POST("", r.h.Categories.Create)
	categories.POST("/bulk-delete", r.h.Categories.BulkDelete)
	categories.PATCH("/:id", r.h.Categories.Update)
	categories.DELETE("/:id", r.h.Categories.Delete)

	return r.engine
}

// Engine returns the engine built by Setup.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
