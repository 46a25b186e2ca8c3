package http

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"evento-chat/internal/infrastructure/changefeed"
	"evento-chat/internal/infrastructure/pubsub"
	"evento-chat/internal/infrastructure/realtime"
	"evento-chat/internal/middleware"
	chat "evento-chat/internal/pkg/chat/application/domain"
	"evento-chat/internal/pkg/chat/persistence/repository/adapter"
	"evento-chat/internal/pkg/presence"
	profileAdapter "evento-chat/internal/repository/adapter"

	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	srv    *httptest.Server
	repo   *adapter.MemoryChatRepository
	convID chat.ConversationID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := adapter.NewMemoryChatRepository()
	broker := pubsub.NewBroker[chat.ChangeEvent](nil, 64)
	t.Cleanup(broker.Close)
	repo.OnChange = func(ev chat.ChangeEvent) { changefeed.Publish(broker, ev) }

	profiles := profileAdapter.NewMemoryProfileRepository(
		chat.Profile{ID: "alice", FirstName: "Alice", LastName: "Souza"},
		chat.Profile{ID: "bob", FirstName: "João", LastName: "Silva"},
	)

	presenceBroker := pubsub.NewBroker[presence.Event](nil, 64)
	t.Cleanup(presenceBroker.Close)
	svc := presence.NewService(presence.NewChannel(presence.DefaultChannel, presenceBroker), nil, presence.Config{Heartbeat: 50 * time.Millisecond}, nil)

	sessions := realtime.NewRouter()
	t.Cleanup(sessions.Close)

	r := gin.New()
	RegisterRoutes(r.Group("/api/v1"), Dependencies{
		Chats:         repo,
		Profiles:      profiles,
		Notifications: repo,
		Broker:        broker,
		Sessions:      sessions,
		Presence:      svc,
		Limiter:       middleware.NewUserRateLimiter(60, 3),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	id, err := repo.CreateOrGetConversation(context.Background(), "alice", "bob")
	require.NoError(t, err)
	return &fixture{srv: srv, repo: repo, convID: id}
}

func (f *fixture) as(userID string) *resty.Request {
	return resty.New().SetBaseURL(f.srv.URL+"/api/v1").R().SetHeader("X-User-ID", userID)
}

type messageJSON struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Message        string `json:"message"`
	Read           bool   `json:"read"`
}

type messagesResponse struct {
	Other struct {
		ID        string `json:"id"`
		FirstName string `json:"first_name"`
	} `json:"other"`
	Messages []messageJSON `json:"messages"`
	Count    int           `json:"count"`
}

func TestCreateConversationIsIdempotent(t *testing.T) {
	f := newFixture(t)

	var out struct {
		ConversationID string `json:"conversation_id"`
	}
	resp, err := f.as("bob").SetBody(map[string]string{"user_id": "alice"}).SetResult(&out).Post("/conversations")
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusOK, resp.StatusCode())
	assert.Equal(t, f.convID.String(), out.ConversationID)

	resp, err = f.as("bob").SetBody(map[string]string{"user_id": "bob"}).Post("/conversations")
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode())
}

func TestSendAndFetchMarksRead(t *testing.T) {
	f := newFixture(t)
	path := "/conversations/" + f.convID.String() + "/messages"

	var sent messageJSON
	resp, err := f.as("alice").SetBody(map[string]string{"message": "  Olá  "}).SetResult(&sent).Post(path)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode())
	assert.Equal(t, "Olá", sent.Message)
	assert.False(t, sent.Read)

	// the sender's own fetch leaves the message unread
	var own messagesResponse
	resp, err = f.as("alice").SetResult(&own).Get(path)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode())
	require.Len(t, own.Messages, 1)
	assert.False(t, own.Messages[0].Read)
	assert.Equal(t, "bob", own.Other.ID)
	assert.Equal(t, "João", own.Other.FirstName)

	var theirs messagesResponse
	resp, err = f.as("bob").SetResult(&theirs).Get(path)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode())
	require.Len(t, theirs.Messages, 1)
	assert.True(t, theirs.Messages[0].Read)
}

func TestSendRejectsBlankAndOutsiders(t *testing.T) {
	f := newFixture(t)
	path := "/conversations/" + f.convID.String() + "/messages"

	resp, err := f.as("alice").SetBody(map[string]string{"message": " \n "}).Post(path)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode())

	resp, err = f.as("mallory").SetBody(map[string]string{"message": "hi"}).Post(path)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode())

	resp, err = f.as("mallory").Get(path)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusForbidden, resp.StatusCode())
	assert.NotContains(t, resp.String(), "bob")

	resp, err = f.as("alice").Get("/conversations/not-a-uuid/messages")
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode())
}

func TestSendIsRateLimited(t *testing.T) {
	f := newFixture(t)
	path := "/conversations/" + f.convID.String() + "/messages"

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		resp, err := f.as("alice").SetBody(map[string]string{"message": "hi"}).Post(path)
		require.NoError(t, err)
		codes = append(codes, resp.StatusCode())
	}
	assert.Equal(t, []int{201, 201, 201, 429}, codes)
}

func TestListConversationsSearch(t *testing.T) {
	f := newFixture(t)
	_, err := f.as("alice").SetBody(map[string]string{"message": "bom dia"}).Post("/conversations/" + f.convID.String() + "/messages")
	require.NoError(t, err)

	type listResponse struct {
		Conversations []struct {
			ConversationID string `json:"conversation_id"`
			OtherFullName  string `json:"other_full_name"`
			UnreadCount    int    `json:"unread_count"`
			HasUnread      bool   `json:"has_unread"`
		} `json:"conversations"`
	}

	var out listResponse
	resp, err := f.as("alice").SetQueryParam("search", "joão").SetResult(&out).Get("/conversations")
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode())
	require.Len(t, out.Conversations, 1)
	assert.Equal(t, "João Silva", out.Conversations[0].OtherFullName)
	assert.Zero(t, out.Conversations[0].UnreadCount)

	out = listResponse{}
	_, err = f.as("bob").SetResult(&out).Get("/conversations")
	require.NoError(t, err)
	require.Len(t, out.Conversations, 1)
	assert.Equal(t, 1, out.Conversations[0].UnreadCount)
	assert.True(t, out.Conversations[0].HasUnread)

	out = listResponse{}
	_, err = f.as("bob").SetQueryParam("search", "zzz").SetResult(&out).Get("/conversations")
	require.NoError(t, err)
	assert.Empty(t, out.Conversations)
}

func TestMarkReadEndpoint(t *testing.T) {
	f := newFixture(t)
	_, err := f.as("alice").SetBody(map[string]string{"message": "hi"}).Post("/conversations/" + f.convID.String() + "/messages")
	require.NoError(t, err)

	var out struct {
		Updated int64 `json:"updated"`
	}
	resp, err := f.as("bob").SetResult(&out).Post("/conversations/" + f.convID.String() + "/read")
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode())
	assert.Equal(t, int64(1), out.Updated)

	resp, err = f.as("bob").SetResult(&out).Post("/conversations/" + f.convID.String() + "/read")
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode())
	assert.Zero(t, out.Updated)
}

func TestPresenceEndpoint(t *testing.T) {
	f := newFixture(t)

	type presenceResponse struct {
		UserID string `json:"user_id"`
		Online bool   `json:"online"`
	}
	var out presenceResponse
	resp, err := f.as("bob").SetResult(&out).Get("/presence/alice")
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode())
	assert.Equal(t, "alice", out.UserID)
	assert.False(t, out.Online)

	dialSocket(t, f, "alice")
	assert.Eventually(t, func() bool {
		out = presenceResponse{}
		_, err := f.as("bob").SetResult(&out).Get("/presence/alice")
		return err == nil && out.Online
	}, time.Second, 10*time.Millisecond)
}

func TestNotificationsEndpoint(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repo.SaveNotification(context.Background(), chat.Notification{
		UserID:         "bob",
		Kind:           chat.NotificationKindMessage,
		ConversationID: f.convID,
		MessageID:      "m1",
		Body:           "Olá",
	}))

	var out struct {
		Notifications []struct {
			ConversationID string `json:"conversation_id"`
			Body           string `json:"body"`
		} `json:"notifications"`
		Count int `json:"count"`
	}
	resp, err := f.as("bob").SetResult(&out).Get("/notifications")
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode())
	require.Equal(t, 1, out.Count)
	assert.Equal(t, f.convID.String(), out.Notifications[0].ConversationID)
	assert.Equal(t, "Olá", out.Notifications[0].Body)

	resp, err = f.as("alice").SetResult(&out).Get("/notifications")
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode())
	assert.Zero(t, out.Count)
}

func TestRequiresIdentity(t *testing.T) {
	f := newFixture(t)
	resp, err := resty.New().R().Get(f.srv.URL + "/api/v1/conversations")
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode())
}

type frame map[string]any

func dialSocket(t *testing.T, f *fixture, userID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/api/v1/ws?user_id=" + userID
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	readUntil(t, ws, func(fr frame) bool { return fr["type"] == "connected" })
	return ws
}

// readUntil reads frames until match accepts one or a second passes.
func readUntil(t *testing.T, ws *websocket.Conn, match func(frame) bool) frame {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for {
		require.NoError(t, ws.SetReadDeadline(deadline))
		_, data, err := ws.ReadMessage()
		require.NoError(t, err, "no matching frame before deadline")
		var fr frame
		require.NoError(t, json.Unmarshal(data, &fr))
		if match(fr) {
			return fr
		}
	}
}

func lastMessageRead(fr frame, body string) bool {
	if fr["type"] != "messages" {
		return false
	}
	msgs, _ := fr["messages"].([]any)
	if len(msgs) == 0 {
		return false
	}
	last, _ := msgs[len(msgs)-1].(map[string]any)
	return last["message"] == body && last["read"] == true
}

func TestSocketOpenReceivesLiveMessagesAsRead(t *testing.T) {
	f := newFixture(t)
	bob := dialSocket(t, f, "bob")

	require.NoError(t, bob.WriteJSON(map[string]string{"type": "open", "conversation_id": f.convID.String()}))
	opened := readUntil(t, bob, func(fr frame) bool { return fr["type"] == "opened" })
	assert.Equal(t, true, opened["live"])
	readUntil(t, bob, func(fr frame) bool { return fr["type"] == "messages" })

	_, err := f.as("alice").SetBody(map[string]string{"message": "Olá"}).Post("/conversations/" + f.convID.String() + "/messages")
	require.NoError(t, err)

	readUntil(t, bob, func(fr frame) bool { return lastMessageRead(fr, "Olá") })

	msgs, err := f.repo.GetMessagesByConversation(context.Background(), f.convID, 10, 0)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.True(t, msgs[0].Read)
}

func TestSocketOpenRejectsMalformedID(t *testing.T) {
	f := newFixture(t)
	bob := dialSocket(t, f, "bob")

	require.NoError(t, bob.WriteJSON(map[string]string{"type": "open", "conversation_id": "not-a-uuid"}))
	fr := readUntil(t, bob, func(fr frame) bool { return fr["type"] == "error" })
	assert.Equal(t, "bad_request", fr["code"])

	require.NoError(t, bob.WriteJSON(map[string]string{"type": "open", "conversation_id": chat.NewConversationID().String()}))
	fr = readUntil(t, bob, func(fr frame) bool { return fr["type"] == "error" })
	assert.Equal(t, "forbidden", fr["code"])
}

func TestSocketSendAndPresence(t *testing.T) {
	f := newFixture(t)
	bob := dialSocket(t, f, "bob")

	require.NoError(t, bob.WriteJSON(map[string]string{"type": "watch_presence", "user_id": "alice"}))
	fr := readUntil(t, bob, func(fr frame) bool { return fr["type"] == "presence" })
	assert.Equal(t, false, fr["online"])

	alice := dialSocket(t, f, "alice")
	fr = readUntil(t, bob, func(fr frame) bool { return fr["type"] == "presence" })
	assert.Equal(t, "alice", fr["user_id"])
	assert.Equal(t, true, fr["online"])

	require.NoError(t, alice.WriteJSON(map[string]string{
		"type":            "send",
		"conversation_id": f.convID.String(),
		"message":         "oi",
		"input_key":       "composer",
	}))
	sent := readUntil(t, alice, func(fr frame) bool { return fr["type"] == "sent" })
	msg, _ := sent["message"].(map[string]any)
	assert.Equal(t, "oi", msg["message"])

	require.NoError(t, alice.Close())
	fr = readUntil(t, bob, func(fr frame) bool { return fr["type"] == "presence" })
	assert.Equal(t, false, fr["online"])
}

func (f *fixture) seed(t *testing.T, sender string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.repo.SaveMessage(context.Background(), chat.Message{ConversationID: f.convID, SenderID: sender, Body: fmt.Sprintf("old %d", i)})
		require.NoError(t, err)
	}
}

func TestFetchReturnsLatestPage(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", 60)
	path := "/conversations/" + f.convID.String() + "/messages"

	var latest messagesResponse
	resp, err := f.as("bob").SetResult(&latest).Get(path)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode())
	require.Len(t, latest.Messages, 50)
	assert.Equal(t, "old 10", latest.Messages[0].Message)
	assert.Equal(t, "old 59", latest.Messages[49].Message)

	var older messagesResponse
	resp, err = f.as("bob").SetQueryParam("offset", "50").SetResult(&older).Get(path)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode())
	require.Len(t, older.Messages, 10)
	assert.Equal(t, "old 0", older.Messages[0].Message)
}

func TestSocketOpenLongConversation(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "alice", 60)
	bob := dialSocket(t, f, "bob")

	require.NoError(t, bob.WriteJSON(map[string]string{"type": "open", "conversation_id": f.convID.String()}))
	// marking 60 rows read emits updates, none of which may overtake "opened"
	first := readUntil(t, bob, func(frame) bool { return true })
	require.Equal(t, "opened", first["type"])
	assert.Equal(t, true, first["live"])
	readUntil(t, bob, func(fr frame) bool { return lastMessageRead(fr, "old 59") })

	_, err := f.as("alice").SetBody(map[string]string{"message": "Olá newest"}).Post("/conversations/" + f.convID.String() + "/messages")
	require.NoError(t, err)
	fr := readUntil(t, bob, func(fr frame) bool { return lastMessageRead(fr, "Olá newest") })
	msgs, _ := fr["messages"].([]any)
	assert.Len(t, msgs, 50)
}
