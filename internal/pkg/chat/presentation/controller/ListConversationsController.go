package controller

import (
	"context"
	"net/http"
	"time"

	"evento-chat/internal/middleware"
	"evento-chat/internal/pkg/chat/application/usecase"

	"github.com/gin-gonic/gin"
)

// ListConversationsController serves the caller's inbox, optionally filtered by ?search.
type ListConversationsController struct {
	UC *usecase.ListConversationsUseCase
}

func NewListConversationsController(uc *usecase.ListConversationsUseCase) *ListConversationsController {
	return &ListConversationsController{UC: uc}
}

func (h *ListConversationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		items, err := h.UC.Execute(ctx, usecase.ListConversationsInput{
			UserID: middleware.UserID(c),
			Search: c.Query("search"),
		})
		if err != nil {
			respondError(c, err)
			return
		}

		out := toConversationItems(items)
		c.JSON(http.StatusOK, gin.H{
			"conversations": out,
			"count":         len(out),
		})
	}
}
