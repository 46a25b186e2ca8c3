package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"evento-chat/internal/infrastructure/pubsub"
	"evento-chat/internal/infrastructure/realtime"
	"evento-chat/internal/middleware"
	chat "evento-chat/internal/pkg/chat/application/domain"
	"evento-chat/internal/pkg/chat/application/listener"
	"evento-chat/internal/pkg/chat/application/usecase"
	"evento-chat/internal/pkg/presence"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ChatSocketController handles the websocket endpoint for realtime chat traffic.
// Each socket can keep one conversation open at a time and watch the
// presence of any number of users.
type ChatSocketController struct {
	router   *realtime.Router
	broker   *pubsub.Broker[chat.ChangeEvent]
	presence *presence.Service
	limiter  *middleware.UserRateLimiter
	log      *zap.Logger

	validateUC *usecase.ValidateConversationUseCase
	fetchUC    *usecase.GetMessageUseCase
	markReadUC *usecase.MarkReadUseCase
	sendUC     *usecase.SendMessageUseCase

	inflightTimeout time.Duration
}

type SocketDeps struct {
	Router   *realtime.Router
	Broker   *pubsub.Broker[chat.ChangeEvent]
	Presence *presence.Service
	// Limiter is optional; it throttles send frames per user.
	Limiter *middleware.UserRateLimiter
	Log     *zap.Logger

	Validate *usecase.ValidateConversationUseCase
	Fetch    *usecase.GetMessageUseCase
	MarkRead *usecase.MarkReadUseCase
	Send     *usecase.SendMessageUseCase
}

func NewChatSocketController(d SocketDeps) *ChatSocketController {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatSocketController{
		router:          d.Router,
		broker:          d.Broker,
		presence:        d.Presence,
		limiter:         d.Limiter,
		log:             log,
		validateUC:      d.Validate,
		fetchUC:         d.Fetch,
		markReadUC:      d.MarkRead,
		sendUC:          d.Send,
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS middleware does not cover upgrades; tokens are checked by Auth.
		return true
	},
}

type inboundFrame struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id,omitempty"`
	UserID         string `json:"user_id,omitempty"`
	Message        string `json:"message,omitempty"`
	InputKey       string `json:"input_key,omitempty"`
}

type errorFrame struct {
	Type  string `json:"type"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

type ackFrame struct {
	Type           string              `json:"type"`
	ConversationID chat.ConversationID `json:"conversation_id,omitempty"`
}

type openedFrame struct {
	Type           string              `json:"type"`
	ConversationID chat.ConversationID `json:"conversation_id"`
	Other          profilePayload      `json:"other"`
	Live           bool                `json:"live"`
}

type messagesFrame struct {
	Type           string              `json:"type"`
	ConversationID chat.ConversationID `json:"conversation_id"`
	Messages       []messagePayload    `json:"messages"`
}

type sentFrame struct {
	Type    string         `json:"type"`
	Message messagePayload `json:"message"`
}

type presenceFrame struct {
	Type   string `json:"type"`
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
}

const defaultReadTimeout = 60 * time.Second

// socketSession is the per-socket state. Frames are handled one at a time
// by the read loop; only the listener sink and presence callbacks run on
// other goroutines.
type socketSession struct {
	ctl    *ChatSocketController
	conn   *realtime.Connection
	userID string

	live *listener.Listener

	mu      sync.Mutex
	current chat.ConversationID
	// opening holds back listener pushes until "opened" is written;
	// missed records that one was held back
	opening bool
	missed  bool

	watchers map[string]*presence.Watcher
}

// Handle upgrades HTTP connections to websocket and processes frames until the client disconnects.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.UserID(c)
		if userID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user id required"})
			return
		}

		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response.
			ctl.log.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		conn := realtime.NewConnection(userID, ws)
		ctl.router.Attach(conn)

		s := &socketSession{ctl: ctl, conn: conn, userID: userID, watchers: make(map[string]*presence.Watcher)}
		s.live = listener.New(listener.Config{
			UserID:   userID,
			Broker:   ctl.broker,
			Fetch:    ctl.fetchUC,
			MarkRead: ctl.markReadUC,
			Sink:     s.pushMessages,
			Log:      ctl.log,
		})

		var hb *presence.Heartbeat
		if ctl.presence != nil {
			hb = ctl.presence.StartHeartbeat(context.Background(), conn.ID, userID)
		}
		ctl.log.Info("socket connected", zap.String("user_id", userID), zap.String("session_id", conn.ID))

		defer func() {
			s.live.Close()
			s.stopWatchers()
			if hb != nil {
				hb.Stop()
			}
			ctl.router.Detach(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
			ctl.log.Info("socket disconnected", zap.String("user_id", userID), zap.String("session_id", conn.ID))
		}()

		ws.SetReadLimit(1 << 20) // 1MB payload cap
		_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))
		})

		_ = conn.SendJSON(ackFrame{Type: "connected"})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				select {
				case <-conn.Done():
					// replaced by a newer session or shut down
				default:
					s.replyError("read_error", err.Error())
				}
				return
			}
			_ = ws.SetReadDeadline(time.Now().Add(defaultReadTimeout))

			var frame inboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				s.replyError("bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case "open":
				s.handleOpen(c.Request.Context(), frame)
			case "close":
				s.handleClose()
			case "send":
				s.handleSend(c.Request.Context(), frame)
			case "watch_presence":
				s.handleWatch(frame)
			case "unwatch_presence":
				s.handleUnwatch(frame)
			default:
				s.replyError("unsupported_type", "unknown frame type")
			}
		}
	}
}

// handleOpen validates membership, subscribes to live changes, marks the
// conversation read and sends the initial history.
func (s *socketSession) handleOpen(parent context.Context, frame inboundFrame) {
	id, err := chat.ParseConversationID(frame.ConversationID)
	if err != nil {
		s.live.Close()
		s.setCurrent(chat.ConversationID{})
		s.replyError("bad_request", "conversation_id must be a valid uuid")
		return
	}

	ctx, cancel := context.WithTimeout(parent, s.ctl.inflightTimeout)
	defer cancel()

	// detach the previous conversation before validation so a failed open
	// leaves nothing live
	s.live.Close()
	s.setCurrent(chat.ConversationID{})
	s.beginOpen()

	var msgs []chat.Message
	live := false
	v, err := s.ctl.validateUC.Execute(ctx, usecase.ValidateConversationInput{
		ConversationID: id,
		UserID:         s.userID,
		Then: func(ctx context.Context, _ usecase.ValidatedConversation) error {
			s.setCurrent(id)
			if err := s.live.OpenID(id); err != nil {
				s.ctl.log.Warn("conversation opened without live updates",
					zap.String("conversation_id", id.String()),
					zap.Error(err),
				)
			} else {
				live = true
			}
			if _, err := s.ctl.markReadUC.Execute(ctx, usecase.MarkReadInput{ConversationID: id, ReaderID: s.userID}); err != nil {
				return err
			}
			var err error
			msgs, err = s.ctl.fetchUC.Execute(ctx, usecase.GetMessageInput{ConversationID: id})
			return err
		},
	})
	if err != nil {
		s.live.Close()
		s.setCurrent(chat.ConversationID{})
		s.endOpen()
		s.replyUseCaseError(err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SendJSON(openedFrame{Type: "opened", ConversationID: id, Other: toProfilePayload(v.Other), Live: live})
	_ = s.conn.SendJSON(messagesFrame{Type: "messages", ConversationID: id, Messages: toMessagePayloads(msgs)})
	if s.missed {
		// a change landed while opening; the held back push may be newer
		// than msgs
		if fresh, err := s.ctl.fetchUC.Execute(ctx, usecase.GetMessageInput{ConversationID: id}); err == nil {
			_ = s.conn.SendJSON(messagesFrame{Type: "messages", ConversationID: id, Messages: toMessagePayloads(fresh)})
		}
	}
	s.opening, s.missed = false, false
}

func (s *socketSession) beginOpen() {
	s.mu.Lock()
	s.opening, s.missed = true, false
	s.mu.Unlock()
}

func (s *socketSession) endOpen() {
	s.mu.Lock()
	s.opening, s.missed = false, false
	s.mu.Unlock()
}

func (s *socketSession) handleClose() {
	id := s.currentID()
	s.live.Close()
	s.setCurrent(chat.ConversationID{})
	_ = s.conn.SendJSON(ackFrame{Type: "closed", ConversationID: id})
}

func (s *socketSession) handleSend(parent context.Context, frame inboundFrame) {
	id, err := chat.ParseConversationID(frame.ConversationID)
	if err != nil {
		s.replyError("bad_request", "conversation_id must be a valid uuid")
		return
	}
	if s.ctl.limiter != nil && !s.ctl.limiter.Allow(s.userID) {
		s.replyError("rate_limited", "rate limit exceeded")
		return
	}

	ctx, cancel := context.WithTimeout(parent, s.ctl.inflightTimeout)
	defer cancel()
	msg, err := s.ctl.sendUC.Execute(ctx, usecase.SendMessageInput{
		ConversationID: id,
		SenderID:       s.userID,
		Body:           frame.Message,
		InputKey:       frame.InputKey,
	})
	if err != nil {
		s.replyUseCaseError(err)
		return
	}
	_ = s.conn.SendJSON(sentFrame{Type: "sent", Message: toMessagePayload(*msg)})
}

func (s *socketSession) handleWatch(frame inboundFrame) {
	if frame.UserID == "" {
		s.replyError("bad_request", "user_id is required")
		return
	}
	if s.ctl.presence == nil {
		_ = s.conn.SendJSON(presenceFrame{Type: "presence", UserID: frame.UserID})
		return
	}
	if _, ok := s.watchers[frame.UserID]; ok {
		return
	}
	target := frame.UserID
	w, err := s.ctl.presence.Watch(target, func(online bool) {
		_ = s.conn.SendJSON(presenceFrame{Type: "presence", UserID: target, Online: online})
	})
	if err != nil {
		s.ctl.log.Warn("presence watch failed", zap.String("user_id", target), zap.Error(err))
		return
	}
	s.watchers[target] = w
}

func (s *socketSession) handleUnwatch(frame inboundFrame) {
	if w, ok := s.watchers[frame.UserID]; ok {
		w.Stop()
		delete(s.watchers, frame.UserID)
	}
}

func (s *socketSession) stopWatchers() {
	for id, w := range s.watchers {
		w.Stop()
		delete(s.watchers, id)
	}
}

// pushMessages is the listener sink. It must not touch the listener.
func (s *socketSession) pushMessages(msgs []chat.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.opening {
		s.missed = true
		return
	}
	id := s.current
	if len(msgs) > 0 {
		id = msgs[0].ConversationID
	}
	_ = s.conn.SendJSON(messagesFrame{Type: "messages", ConversationID: id, Messages: toMessagePayloads(msgs)})
}

func (s *socketSession) setCurrent(id chat.ConversationID) {
	s.mu.Lock()
	s.current = id
	s.mu.Unlock()
}

func (s *socketSession) currentID() chat.ConversationID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *socketSession) replyUseCaseError(err error) {
	if errors.Is(err, usecase.ErrPersistence) {
		s.ctl.log.Error("socket use case failed", zap.String("user_id", s.userID), zap.Error(err))
	}
	s.replyError(socketCode(err), publicMessage(err))
}

func (s *socketSession) replyError(code string, message string) {
	_ = s.conn.SendJSON(errorFrame{Type: "error", Code: code, Error: message})
}
