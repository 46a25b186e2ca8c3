package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"evento-chat/internal/middleware"
	chat "evento-chat/internal/pkg/chat/application/domain"
	"evento-chat/internal/pkg/chat/application/usecase"

	"github.com/gin-gonic/gin"
)

// GetMessageController serves the history of a conversation the caller
// belongs to. Opening a conversation marks inbound messages read unless
// ?mark_read=false is given.
type GetMessageController struct {
	Validate *usecase.ValidateConversationUseCase
	Fetch    *usecase.GetMessageUseCase
	MarkRead *usecase.MarkReadUseCase
}

func NewGetMessageController(validate *usecase.ValidateConversationUseCase, fetch *usecase.GetMessageUseCase, markRead *usecase.MarkReadUseCase) *GetMessageController {
	return &GetMessageController{Validate: validate, Fetch: fetch, MarkRead: markRead}
}

func (h *GetMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := conversationParam(c)
		if !ok {
			return
		}
		userID := middleware.UserID(c)

		limit := usecase.DefaultMessageLimit
		offset := 0
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		if v := c.Query("offset"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}
		if limit > usecase.MaxMessageLimit {
			limit = usecase.MaxMessageLimit
		}
		markRead := c.DefaultQuery("mark_read", "true") != "false"

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		var msgs []chat.Message
		v, err := h.Validate.Execute(ctx, usecase.ValidateConversationInput{
			ConversationID: id,
			UserID:         userID,
			Then: func(ctx context.Context, _ usecase.ValidatedConversation) error {
				if markRead {
					if _, err := h.MarkRead.Execute(ctx, usecase.MarkReadInput{ConversationID: id, ReaderID: userID}); err != nil {
						return err
					}
				}
				var err error
				msgs, err = h.Fetch.Execute(ctx, usecase.GetMessageInput{ConversationID: id, Limit: limit, Offset: offset})
				return err
			},
		})
		if err != nil {
			respondError(c, err)
			return
		}

		out := toMessagePayloads(msgs)
		c.JSON(http.StatusOK, gin.H{
			"conversation_id": id,
			"other":           toProfilePayload(v.Other),
			"messages":        out,
			"limit":           limit,
			"offset":          offset,
			"count":           len(out),
		})
	}
}
