package api

import (
	"errors"
	"net/http"

	"storefront/internal/i18n"
	"storefront/internal/order"
	"storefront/internal/storefront"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type languageRequest struct {
	Language string `json:"language" binding:"required"`
}

type branchRequest struct {
	BranchID string `json:"branch_id" binding:"required"`
}

type addItemRequest struct {
	ItemID string `json:"item_id" binding:"required"`
}

type changeItemRequest struct {
	Delta int `json:"delta" binding:"required"`
}

type checkoutRequest struct {
	Notes string `json:"notes"`
}

// sessionID returns the visitor id from the cookie, issuing a new one
// on the first visit
func (h *Handler) sessionID(c *gin.Context) string {
	if id, err := c.Cookie(h.deps.SessionCookie); err == nil {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}

	id := uuid.New().String()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.deps.SessionCookie, id, int(h.deps.SessionTTL.Seconds()), "/", "", h.deps.SecureCookies, true)
	return id
}

// withSession opens the visitor session around fn
func (h *Handler) withSession(fn func(*gin.Context, *storefront.Session)) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := h.deps.Sessions.Open(c.Request.Context(), h.sessionID(c))
		if err != nil {
			h.logger.Error("Failed to open session", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Session unavailable, please try again",
			})
			return
		}
		defer session.Close(c.Request.Context())

		fn(c, session)
	}
}

func (h *Handler) listBranches(c *gin.Context, s *storefront.Session) {
	c.JSON(http.StatusOK, gin.H{
		"title":    i18n.Label(i18n.LabelSelectBranch, s.Locale().Language()),
		"branches": s.Branches(),
	})
}

func (h *Handler) getMenu(c *gin.Context, s *storefront.Session) {
	c.JSON(http.StatusOK, s.Menu())
}

// getLabels returns the UI dictionary in the session language. A text
// query is translated from either language into the session language.
func (h *Handler) getLabels(c *gin.Context, s *storefront.Session) {
	lang := s.Locale().Language()
	resp := gin.H{
		"language":  lang,
		"direction": lang.Direction(),
		"labels":    i18n.Labels(lang),
	}
	if text := c.Query("text"); text != "" {
		resp["translation"] = i18n.Translate(text, lang)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) getSession(c *gin.Context, s *storefront.Session) {
	c.JSON(http.StatusOK, s.View())
}

func (h *Handler) getCart(c *gin.Context, s *storefront.Session) {
	c.JSON(http.StatusOK, s.Cart())
}

func (h *Handler) setLanguage(c *gin.Context, s *storefront.Session) {
	var req languageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	lang, ok := i18n.ParseLanguage(req.Language)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported language"})
		return
	}

	s.SetLanguage(c.Request.Context(), lang)
	c.JSON(http.StatusOK, s.View())
}

func (h *Handler) toggleLanguage(c *gin.Context, s *storefront.Session) {
	s.ToggleLanguage(c.Request.Context())
	c.JSON(http.StatusOK, s.View())
}

func (h *Handler) selectBranch(c *gin.Context, s *storefront.Session) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	if err := s.SelectBranch(c.Request.Context(), req.BranchID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Branch not available"})
		return
	}
	c.JSON(http.StatusOK, s.View())
}

func (h *Handler) addCartItem(c *gin.Context, s *storefront.Session) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	s.AddItem(c.Request.Context(), req.ItemID)
	c.JSON(http.StatusOK, s.Cart())
}

func (h *Handler) changeCartItem(c *gin.Context, s *storefront.Session) {
	var req changeItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	s.ChangeQuantity(c.Request.Context(), c.Param("id"), req.Delta)
	c.JSON(http.StatusOK, s.Cart())
}

func (h *Handler) removeCartItem(c *gin.Context, s *storefront.Session) {
	s.RemoveItem(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, s.Cart())
}

func (h *Handler) checkout(c *gin.Context, s *storefront.Session) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	composition, err := s.Checkout(c.Request.Context(), req.Notes)
	switch {
	case errors.Is(err, order.ErrNoBranch):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": i18n.Label(i18n.LabelSelectBranch, s.Locale().Language()),
		})
		return
	case errors.Is(err, order.ErrEmptyCart):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Cart is empty"})
		return
	case err != nil:
		h.logger.Error("Checkout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compose order"})
		return
	}

	c.JSON(http.StatusOK, composition)
}
