package realtime

import (
	"sync"
)

// Router is the in-process room registry: it maps conversations to the
// connections currently subscribed to them and fans events out to a room.
// State is purely transient; a process restart starts from an empty registry
// and durable history lives in the message log, not here.
type Router struct {
	mu           sync.RWMutex
	sessions     map[string]*Connection            // sessionID -> connection
	rooms        map[string]map[string]*Connection // conversationID -> sessionID -> connection
	sessionRooms map[string]map[string]struct{}    // sessionID -> set of conversationIDs
}

// NewRouter constructs an initialized Router.
func NewRouter() *Router {
	return &Router{
		sessions:     make(map[string]*Connection),
		rooms:        make(map[string]map[string]*Connection),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection and starts its write loop. A user may hold
// several live sessions (one per open client).
func (r *Router) Attach(conn *Connection) {
	r.mu.Lock()
	r.sessions[conn.ID] = conn
	r.sessionRooms[conn.ID] = make(map[string]struct{})
	r.mu.Unlock()

	conn.Start()
}

// Detach removes a connection from the registry and from every room it had
// joined. Safe to call for connections that were never attached.
func (r *Router) Detach(conn *Connection) {
	r.mu.Lock()
	r.detachLocked(conn.ID)
	r.mu.Unlock()
}

// Join adds the connection to the conversation room. Unattached connections
// are ignored.
func (r *Router) Join(conversationID string, conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[conn.ID]; !ok {
		return
	}

	room := r.rooms[conversationID]
	if room == nil {
		room = make(map[string]*Connection)
		r.rooms[conversationID] = room
	}
	room[conn.ID] = conn

	memberships := r.sessionRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		r.sessionRooms[conn.ID] = memberships
	}
	memberships[conversationID] = struct{}{}
}

// Leave removes the connection from the conversation room. Leaving a room the
// connection never joined is a no-op.
func (r *Router) Leave(conversationID string, conn *Connection) {
	r.mu.Lock()
	r.leaveLocked(conversationID, conn.ID)
	r.mu.Unlock()
}

// Members snapshots the connections currently joined to the conversation.
func (r *Router) Members(conversationID string) []*Connection {
	r.mu.RLock()
	room := r.rooms[conversationID]
	members := make([]*Connection, 0, len(room))
	for _, conn := range room {
		members = append(members, conn)
	}
	r.mu.RUnlock()
	return members
}

// Broadcast delivers payload to every connection currently joined to the
// conversation and reports how many sends were accepted. The lock is held
// only to snapshot the room; handoff to each connection happens outside it.
// Zero live members is normal: absent participants catch up from history.
func (r *Router) Broadcast(conversationID string, payload []byte) int {
	members := r.Members(conversationID)

	delivered := 0
	for _, conn := range members {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// NotifyUser delivers payload to every live session of the given user,
// regardless of room membership, and reports how many sends were accepted. A
// user with multiple clients open gets the payload on each of them.
func (r *Router) NotifyUser(userID string, payload []byte) int {
	r.mu.RLock()
	sessions := make([]*Connection, 0, 2)
	for _, conn := range r.sessions {
		if conn.UserID == userID {
			sessions = append(sessions, conn)
		}
	}
	r.mu.RUnlock()

	delivered := 0
	for _, conn := range sessions {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Close terminates all tracked connections and clears router state.
func (r *Router) Close() {
	r.mu.Lock()
	sessions := make([]*Connection, 0, len(r.sessions))
	for _, conn := range r.sessions {
		sessions = append(sessions, conn)
	}
	r.sessions = make(map[string]*Connection)
	r.rooms = make(map[string]map[string]*Connection)
	r.sessionRooms = make(map[string]map[string]struct{})
	r.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "router shutdown")
	}
}

func (r *Router) detachLocked(sessionID string) {
	if _, ok := r.sessions[sessionID]; !ok {
		return
	}
	delete(r.sessions, sessionID)

	for roomID := range r.sessionRooms[sessionID] {
		r.leaveLocked(roomID, sessionID)
	}
	delete(r.sessionRooms, sessionID)
}

func (r *Router) leaveLocked(conversationID string, sessionID string) {
	room := r.rooms[conversationID]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(r.rooms, conversationID)
	}
	if memberships, ok := r.sessionRooms[sessionID]; ok {
		delete(memberships, conversationID)
	}
}
