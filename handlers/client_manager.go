package handlers

import (
	"sync"

	"gridwalk/messages"
)

// ClientManager tracks connected sessions and routes outbound messages to
// them. It implements world.Sender: Send enqueues without blocking, so the
// world can fan out a broadcast while holding its state lock.
type ClientManager struct {
	mutex    sync.RWMutex
	sessions map[string]*ClientHandler
}

// NewClientManager creates a new client manager
func NewClientManager() *ClientManager {
	return &ClientManager{
		sessions: make(map[string]*ClientHandler),
	}
}

// AddSession registers a connected session.
func (cm *ClientManager) AddSession(sessionID string, handler *ClientHandler) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.sessions[sessionID] = handler
}

// RemoveSession removes a session after disconnect. Messages addressed to it
// afterwards are silently discarded.
func (cm *ClientManager) RemoveSession(sessionID string) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	delete(cm.sessions, sessionID)
}

// Send enqueues a message for one session, dropping it if the session is
// already gone.
func (cm *ClientManager) Send(sessionID string, msg messages.BaseMessage) {
	cm.mutex.RLock()
	handler, ok := cm.sessions[sessionID]
	cm.mutex.RUnlock()
	if !ok {
		return
	}
	_ = handler.conn.SendMessage(msg)
}

// Count returns the number of connected sessions.
func (cm *ClientManager) Count() int {
	cm.mutex.RLock()
	defer cm.mutex.RUnlock()
	return len(cm.sessions)
}
