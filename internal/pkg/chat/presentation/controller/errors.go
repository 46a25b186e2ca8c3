package controller

import (
	"errors"
	"net/http"

	chat "evento-chat/internal/pkg/chat/application/domain"
	"evento-chat/internal/pkg/chat/application/usecase"

	"github.com/gin-gonic/gin"
)

// statusFor maps use case errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		return http.StatusInternalServerError
	case errors.Is(err, chat.ErrNotParticipant):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrSendInFlight):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}

// publicMessage hides infrastructure details from clients.
func publicMessage(err error) string {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		return "unexpected persistence error"
	case errors.Is(err, chat.ErrNotParticipant):
		return "user is not a participant in this conversation"
	default:
		return err.Error()
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": publicMessage(err)})
}

// socketCode is the code of a websocket error frame.
func socketCode(err error) string {
	switch statusFor(err) {
	case http.StatusInternalServerError:
		return "internal_error"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusConflict:
		return "in_flight"
	default:
		return "bad_request"
	}
}

// conversationParam parses :conversationId and answers 400 when malformed.
func conversationParam(c *gin.Context) (chat.ConversationID, bool) {
	id, err := chat.ParseConversationID(c.Param("conversationId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversationId must be a valid uuid"})
		return chat.ConversationID{}, false
	}
	return id, true
}
