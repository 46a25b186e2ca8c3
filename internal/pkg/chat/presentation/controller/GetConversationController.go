package controller

import (
	"context"
	"net/http"
	"time"

	"evento-chat/internal/middleware"
	"evento-chat/internal/pkg/chat/application/usecase"

	"github.com/gin-gonic/gin"
)

type GetConversationController struct {
	UC *usecase.ValidateConversationUseCase
}

func NewGetConversationController(uc *usecase.ValidateConversationUseCase) *GetConversationController {
	return &GetConversationController{UC: uc}
}

func (h *GetConversationController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := conversationParam(c)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		v, err := h.UC.Execute(ctx, usecase.ValidateConversationInput{ConversationID: id, UserID: middleware.UserID(c)})
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"conversation_id": id,
			"other":           toProfilePayload(v.Other),
		})
	}
}
