package api

import (
	"context"
	"net/http"
	"time"

	"storefront/internal/admin"
	"storefront/internal/analytics"
	"storefront/internal/auth"
	"storefront/internal/storefront"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Dependencies wires the services behind the HTTP API
type Dependencies struct {
	Sessions  *storefront.Manager
	Menu      *admin.MenuService
	Branches  *admin.BranchService
	Auth      *auth.Service
	Analytics *analytics.Service

	// ReadyChecks are probed by /ready, keyed by dependency name
	ReadyChecks map[string]func(context.Context) error

	SessionCookie string
	SessionTTL    time.Duration
	SecureCookies bool

	RequestsPerSecond float64
	Burst             int
}

// Handler contains HTTP handlers
type Handler struct {
	deps   Dependencies
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(deps Dependencies) *Handler {
	if deps.SessionCookie == "" {
		deps.SessionCookie = "storefront_session"
	}
	return &Handler{
		deps:   deps,
		logger: util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	checkoutLimit := rateLimitMiddleware(h.deps.RequestsPerSecond, h.deps.Burst)
	loginLimit := rateLimitMiddleware(h.deps.RequestsPerSecond, h.deps.Burst)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/branches", h.withSession(h.listBranches))
		v1.GET("/menu", h.withSession(h.getMenu))
		v1.GET("/labels", h.withSession(h.getLabels))
		v1.GET("/session", h.withSession(h.getSession))
		v1.PUT("/session/language", h.withSession(h.setLanguage))
		v1.POST("/session/language/toggle", h.withSession(h.toggleLanguage))
		v1.PUT("/session/branch", h.withSession(h.selectBranch))
		v1.GET("/cart", h.withSession(h.getCart))
		v1.POST("/cart/items", h.withSession(h.addCartItem))
		v1.PATCH("/cart/items/:id", h.withSession(h.changeCartItem))
		v1.DELETE("/cart/items/:id", h.withSession(h.removeCartItem))
		v1.POST("/checkout", checkoutLimit, h.withSession(h.checkout))
	}

	adminGroup := v1.Group("/admin")
	{
		adminGroup.POST("/login", loginLimit, h.login)
		adminGroup.POST("/logout", h.logout)

		protected := adminGroup.Group("", h.deps.Auth.RequireSession())
		protected.GET("/menu-items", h.listMenuItems)
		protected.POST("/menu-items", h.createMenuItem)
		protected.PUT("/menu-items/:id", h.updateMenuItem)
		protected.DELETE("/menu-items/:id", h.deleteMenuItem)
		protected.GET("/branches", h.listAllBranches)
		protected.POST("/branches", h.createBranch)
		protected.PUT("/branches/:id", h.updateBranch)
		protected.DELETE("/branches/:id", h.deleteBranch)
		protected.GET("/analytics", h.getAnalytics)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck reports not ready while any dependency check fails
func (h *Handler) readinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failures := gin.H{}
	for name, check := range h.deps.ReadyChecks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "not ready",
			"failures": failures,
			"time":     time.Now().Unix(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}
