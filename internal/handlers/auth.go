package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/podomarket/storefront-service/internal/middleware"
	"github.com/podomarket/storefront-service/internal/models"
)

// Login handles POST /api/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var creds models.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	session, err := h.sessions.Login(c.Request.Context(), &creds)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Register handles POST /api/auth/register
func (h *Handlers) Register(c *gin.Context) {
	var reg models.Registration
	if err := c.ShouldBindJSON(&reg); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	session, err := h.sessions.Register(c.Request.Context(), &reg)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// Logout handles POST /api/auth/logout. The token is stateless, so the
// client discards it; server side we only drop the conversation state.
func (h *Handlers) Logout(c *gin.Context) {
	h.chat.Reset(middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Me handles GET /api/auth/me
func (h *Handlers) Me(c *gin.Context) {
	user, err := h.sessions.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
