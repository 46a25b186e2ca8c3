package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type presenceReader interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
}

type GetPresenceController struct {
	Presence presenceReader
	Log      *zap.Logger
}

func NewGetPresenceController(p presenceReader, log *zap.Logger) *GetPresenceController {
	if log == nil {
		log = zap.NewNop()
	}
	return &GetPresenceController{Presence: p, Log: log}
}

// Handle answers offline when presence cannot be read.
func (h *GetPresenceController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Param("userId")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		online, err := h.Presence.IsOnline(ctx, userID)
		if err != nil {
			h.Log.Warn("presence lookup failed", zap.String("user_id", userID), zap.Error(err))
			online = false
		}

		c.JSON(http.StatusOK, gin.H{"user_id": userID, "online": online})
	}
}
