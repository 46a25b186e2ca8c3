package controller

import (
	"context"
	"net/http"
	"time"

	"evento-chat/internal/middleware"
	"evento-chat/internal/pkg/chat/application/usecase"

	"github.com/gin-gonic/gin"
)

// CreateConversationController opens (or finds) the 1:1 conversation between
// the caller and another user.
type CreateConversationController struct {
	UC *usecase.CreateOrGetConversationUseCase
}

func NewCreateConversationController(uc *usecase.CreateOrGetConversationUseCase) *CreateConversationController {
	return &CreateConversationController{UC: uc}
}

type createConversationRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *CreateConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		id, err := h.UC.Execute(ctx, usecase.CreateOrGetConversationInput{
			UserID:      middleware.UserID(c),
			OtherUserID: req.UserID,
		})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"conversation_id": id})
	}
}
