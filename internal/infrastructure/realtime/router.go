package realtime

import (
	"sync"

	"github.com/gorilla/websocket"
)

// CloseSessionReplaced is sent to a socket displaced by a newer one of the same user.
const CloseSessionReplaced = 4001

// Router tracks websocket sessions and keeps one active Connection per user.
type Router struct {
	mu           sync.RWMutex
	sessions     map[string]*Connection // sessionID -> connection
	userSessions map[string]string      // userID -> sessionID
}

func NewRouter() *Router {
	return &Router{
		sessions:     make(map[string]*Connection),
		userSessions: make(map[string]string),
	}
}

// Attach registers conn and starts its write loop. A previous session of the
// same user is detached and closed after the swap.
func (r *Router) Attach(conn *Connection) {
	var previous *Connection

	r.mu.Lock()
	if existingID, ok := r.userSessions[conn.UserID]; ok {
		previous = r.sessions[existingID]
		delete(r.sessions, existingID)
	}
	r.sessions[conn.ID] = conn
	r.userSessions[conn.UserID] = conn.ID
	r.mu.Unlock()

	conn.Start()

	if previous != nil {
		previous.Close(CloseSessionReplaced, "session replaced")
	}
}

// Detach forgets conn if it is still tracked. Detaching a replaced session
// leaves the newer one in place.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[conn.ID]; !ok {
		return
	}
	delete(r.sessions, conn.ID)
	if current, ok := r.userSessions[conn.UserID]; ok && current == conn.ID {
		delete(r.userSessions, conn.UserID)
	}
}

// Lookup returns the active connection of userID.
func (r *Router) Lookup(userID string) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sessionID, ok := r.userSessions[userID]
	if !ok {
		return nil, false
	}
	conn := r.sessions[sessionID]
	return conn, conn != nil
}

// NotifyUser delivers payload to the user's current connection. It reports
// false when the user has no session on this node.
func (r *Router) NotifyUser(userID string, payload []byte) bool {
	conn, ok := r.Lookup(userID)
	if !ok {
		return false
	}
	return conn.Send(payload) == nil
}

func (r *Router) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close terminates every tracked connection.
func (r *Router) Close() {
	r.mu.Lock()
	sessions := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		sessions = append(sessions, conn)
	}
	r.sessions = make(map[string]*Connection)
	r.userSessions = make(map[string]string)
	r.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(websocket.CloseGoingAway, "server shutdown")
	}
}
