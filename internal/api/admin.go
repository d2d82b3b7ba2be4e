package api

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/admin"
	"storefront/internal/analytics"
	"storefront/internal/auth"
	"storefront/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	token, err := h.deps.Auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		h.logger.Error("Admin sign-in failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sign in"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(auth.CookieName, token, 0, "/api/v1/admin", "", h.deps.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) logout(c *gin.Context) {
	if token := auth.TokenFromRequest(c); token != "" {
		if err := h.deps.Auth.SignOut(c.Request.Context(), token); err != nil {
			h.logger.Error("Admin sign-out failed", zap.Error(err))
		}
	}
	c.SetCookie(auth.CookieName, "", -1, "/api/v1/admin", "", h.deps.SecureCookies, true)
	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

// adminError maps service errors to responses
func (h *Handler) adminError(c *gin.Context, err error, prompt string) {
	switch {
	case errors.Is(err, admin.ErrInvalidPrice), errors.Is(err, admin.ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, admin.ErrConfirmationRequired):
		c.JSON(http.StatusConflict, gin.H{
			"error":   err.Error(),
			"confirm": prompt,
		})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	default:
		h.logger.Error("Admin request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Request failed",
			"details": err.Error(),
		})
	}
}

func confirmed(c *gin.Context) bool {
	ok, _ := strconv.ParseBool(c.Query("confirm"))
	return ok
}

func (h *Handler) listMenuItems(c *gin.Context) {
	items, err := h.deps.Menu.List(c.Request.Context())
	if err != nil {
		h.adminError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) createMenuItem(c *gin.Context) {
	var req admin.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	item, err := h.deps.Menu.Create(c.Request.Context(), &req)
	if err != nil {
		h.adminError(c, err, "")
		return
	}
	h.respondMenu(c, http.StatusCreated, item)
}

func (h *Handler) updateMenuItem(c *gin.Context) {
	var req admin.MenuItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	item, err := h.deps.Menu.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.adminError(c, err, "")
		return
	}
	h.respondMenu(c, http.StatusOK, item)
}

func (h *Handler) deleteMenuItem(c *gin.Context) {
	err := h.deps.Menu.Delete(c.Request.Context(), c.Param("id"), confirmed(c))
	if err != nil {
		h.adminError(c, err, "Are you sure you want to delete this menu item?")
		return
	}
	h.respondMenu(c, http.StatusOK, nil)
}

// respondMenu returns the mutated item with the refreshed list
func (h *Handler) respondMenu(c *gin.Context, status int, item interface{}) {
	items, err := h.deps.Menu.List(c.Request.Context())
	if err != nil {
		h.adminError(c, err, "")
		return
	}
	c.JSON(status, gin.H{"item": item, "items": items})
}

func (h *Handler) listAllBranches(c *gin.Context) {
	branches, err := h.deps.Branches.List(c.Request.Context())
	if err != nil {
		h.adminError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, gin.H{"branches": branches})
}

func (h *Handler) createBranch(c *gin.Context) {
	var req admin.BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	branch, err := h.deps.Branches.Create(c.Request.Context(), &req)
	if err != nil {
		h.adminError(c, err, "")
		return
	}
	h.respondBranches(c, http.StatusCreated, branch)
}

func (h *Handler) updateBranch(c *gin.Context) {
	var req admin.BranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	branch, err := h.deps.Branches.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.adminError(c, err, "")
		return
	}
	h.respondBranches(c, http.StatusOK, branch)
}

func (h *Handler) deleteBranch(c *gin.Context) {
	err := h.deps.Branches.Delete(c.Request.Context(), c.Param("id"), confirmed(c))
	if err != nil {
		h.adminError(c, err, "Are you sure you want to delete this branch?")
		return
	}
	h.respondBranches(c, http.StatusOK, nil)
}

// respondBranches returns the mutated branch with the refreshed list
func (h *Handler) respondBranches(c *gin.Context, status int, branch interface{}) {
	branches, err := h.deps.Branches.List(c.Request.Context())
	if err != nil {
		h.adminError(c, err, "")
		return
	}
	c.JSON(status, gin.H{"branch": branch, "branches": branches})
}

func (h *Handler) getAnalytics(c *gin.Context) {
	period, err := analytics.ParsePeriod(c.Query("period"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.deps.Analytics.Report(c.Request.Context(), period)
	if err != nil {
		h.logger.Error("Analytics failed", zap.String("period", string(period)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading analytics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "report": report})
}
