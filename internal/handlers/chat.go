package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/podomarket/storefront-service/internal/middleware"
	"github.com/podomarket/storefront-service/internal/models"
)

// PostChat handles POST /api/chat
func (h *Handlers) PostChat(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	result, err := h.chat.Send(c.Request.Context(), middleware.UserID(c), req.Message)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ResetChat handles DELETE /api/chat
func (h *Handlers) ResetChat(c *gin.Context) {
	h.chat.Reset(middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}

// GetTranscript handles GET /api/chat
func (h *Handlers) GetTranscript(c *gin.Context) {
	transcript := h.chat.Transcript(middleware.UserID(c))
	if transcript == nil {
		transcript = []models.ChatMessage{}
	}
	c.JSON(http.StatusOK, gin.H{"messages": transcript})
}
