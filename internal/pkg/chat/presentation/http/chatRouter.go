package http

import (
	"evento-chat/internal/infrastructure/pubsub"
	"evento-chat/internal/infrastructure/realtime"
	"evento-chat/internal/middleware"
	chat "evento-chat/internal/pkg/chat/application/domain"
	"evento-chat/internal/pkg/chat/application/usecase"
	repository "evento-chat/internal/pkg/chat/persistence/repository/port"
	"evento-chat/internal/pkg/chat/presentation/controller"
	"evento-chat/internal/pkg/presence"
	profilerepo "evento-chat/internal/repository/port"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Dependencies are the adapters the chat endpoints are built on.
type Dependencies struct {
	Chats    repository.ChatRepository
	Profiles profilerepo.ProfileRepository
	// Notifications backs GET /notifications; the route is skipped when nil.
	Notifications repository.NotificationRepository
	Broker        *pubsub.Broker[chat.ChangeEvent]
	Sessions      *realtime.Router
	Presence      *presence.Service
	// Send is shared by HTTP and websocket so in-flight sends are serialized
	// across both. Built from Chats when nil.
	Send      *usecase.SendMessageUseCase
	Limiter   *middleware.UserRateLimiter
	JWTSecret string
	Log       *zap.Logger
}

// RegisterRoutes registers chat-related HTTP endpoints under the given router group
// It constructs per-endpoint controllers and binds them directly to routes.
func RegisterRoutes(g *gin.RouterGroup, d Dependencies) {
	validateUC := usecase.NewValidateConversationUseCase(d.Chats, d.Profiles)
	fetchUC := usecase.NewGetMessageUseCase(d.Chats)
	markReadUC := usecase.NewMarkReadUseCase(d.Chats)
	sendUC := d.Send
	if sendUC == nil {
		sendUC = usecase.NewSendMessageUseCase(d.Chats)
	}

	createCtl := controller.NewCreateConversationController(usecase.NewCreateOrGetConversationUseCase(d.Chats))
	listCtl := controller.NewListConversationsController(usecase.NewListConversationsUseCase(d.Chats, d.Profiles))
	getConvCtl := controller.NewGetConversationController(validateUC)
	getMsgCtl := controller.NewGetMessageController(validateUC, fetchUC, markReadUC)
	sendMsgCtl := controller.NewSendMessageController(sendUC)
	markReadCtl := controller.NewMarkReadController(markReadUC)
	presenceCtl := controller.NewGetPresenceController(d.Presence, d.Log)
	socketCtl := controller.NewChatSocketController(controller.SocketDeps{
		Router:   d.Sessions,
		Broker:   d.Broker,
		Presence: d.Presence,
		Limiter:  d.Limiter,
		Log:      d.Log,
		Validate: validateUC,
		Fetch:    fetchUC,
		MarkRead: markReadUC,
		Send:     sendUC,
	})

	authed := g.Group("", middleware.Auth(d.JWTSecret))

	send := []gin.HandlerFunc{sendMsgCtl.Handle()}
	if d.Limiter != nil {
		send = append([]gin.HandlerFunc{middleware.RateLimit(d.Limiter, d.Log)}, send...)
	}

	// POST /api/v1/conversations -> create or get the conversation with another user
	authed.POST("/conversations", createCtl.Handle())

	// GET /api/v1/conversations?search= -> inbox
	authed.GET("/conversations", listCtl.Handle())

	// GET /api/v1/conversations/:conversationId -> validate and resolve the other participant
	authed.GET("/conversations/:conversationId", getConvCtl.Handle())

	// GET /api/v1/conversations/:conversationId/messages -> history, marks read on open
	authed.GET("/conversations/:conversationId/messages", getMsgCtl.Handle())

	// POST /api/v1/conversations/:conversationId/messages -> send a message
	authed.POST("/conversations/:conversationId/messages", send...)

	// POST /api/v1/conversations/:conversationId/read -> mark inbound messages read
	authed.POST("/conversations/:conversationId/read", markReadCtl.Handle())

	// GET /api/v1/presence/:userId -> online state
	authed.GET("/presence/:userId", presenceCtl.Handle())

	if d.Notifications != nil {
		notificationsCtl := controller.NewListNotificationsController(usecase.NewListNotificationsUseCase(d.Notifications))
		// GET /api/v1/notifications?limit= -> offline notifications, newest first
		authed.GET("/notifications", notificationsCtl.Handle())
	}

	// GET /api/v1/ws -> websocket endpoint for realtime chat
	authed.GET("/ws", socketCtl.Handle())
}
