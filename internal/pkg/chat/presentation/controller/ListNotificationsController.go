package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"evento-chat/internal/middleware"
	"evento-chat/internal/pkg/chat/application/usecase"

	"github.com/gin-gonic/gin"
)

// ListNotificationsController serves notifications queued while the caller was offline.
type ListNotificationsController struct {
	UC *usecase.ListNotificationsUseCase
}

func NewListNotificationsController(uc *usecase.ListNotificationsUseCase) *ListNotificationsController {
	return &ListNotificationsController{UC: uc}
}

func (h *ListNotificationsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.Query("limit"))

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		list, err := h.UC.Execute(ctx, usecase.ListNotificationsInput{UserID: middleware.UserID(c), Limit: limit})
		if err != nil {
			respondError(c, err)
			return
		}

		out := toNotificationPayloads(list)
		c.JSON(http.StatusOK, gin.H{
			"notifications": out,
			"count":         len(out),
		})
	}
}
