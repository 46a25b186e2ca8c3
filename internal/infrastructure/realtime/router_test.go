package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dial starts a test server that attaches every accepted
// socket for userID to router and returns the client side.
func dial(t *testing.T, router *Router, userID string) (*websocket.Conn, *Connection) {
	t.Helper()
	accepted := make(chan *Connection, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConnection(userID, ws)
		router.Attach(conn)
		accepted <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	select {
	case conn := <-accepted:
		return client, conn
	case <-time.After(time.Second):
		t.Fatal("server did not accept")
		return nil, nil
	}
}

func TestNotifyUserDeliversToCurrentSession(t *testing.T) {
	router := NewRouter()
	defer router.Close()

	client, _ := dial(t, router, "bob")
	assert.True(t, router.NotifyUser("bob", []byte(`{"type":"ping"}`)))
	assert.False(t, router.NotifyUser("alice", []byte(`{}`)))

	_ = client.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ping"}`, string(data))
}

func TestAttachReplacesPreviousSession(t *testing.T) {
	router := NewRouter()
	defer router.Close()

	firstClient, first := dial(t, router, "bob")
	_, second := dial(t, router, "bob")

	current, ok := router.Lookup("bob")
	require.True(t, ok)
	assert.Equal(t, second.ID, current.ID)
	assert.Equal(t, 1, router.Count())

	_ = firstClient.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err := firstClient.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, CloseSessionReplaced, closeErr.Code)

	// detaching the stale session keeps the new one routable
	router.Detach(first)
	assert.Equal(t, ErrConnectionClosed, first.Send([]byte("x")))
	_, ok = router.Lookup("bob")
	assert.True(t, ok)

	router.Detach(second)
	_, ok = router.Lookup("bob")
	assert.False(t, ok)
}
