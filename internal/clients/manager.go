package clients

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Manager tracks one control connection per client ID.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]*websocket.Conn
}

func NewManager() *Manager {
	return &Manager{clients: make(map[string]*websocket.Conn)}
}

// SetControl registers conn for id and returns the connection it replaced, if any.
func (m *Manager) SetControl(id string, conn *websocket.Conn) (old *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.clients[id]; ok && c != conn {
		old = c
	}
	m.clients[id] = conn
	return
}

// RemoveControl forgets conn, unless id has since been taken over by another connection.
func (m *Manager) RemoveControl(id string, conn *websocket.Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clients[id] == conn {
		delete(m.clients, id)
	}
}

// Control returns the current connection for id.
func (m *Manager) Control(id string) *websocket.Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clients[id]
}

// Len returns the number of registered clients.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

// CloseAll closes and forgets every registered connection.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(m.clients))
	for id, c := range m.clients {
		conns = append(conns, c)
		delete(m.clients, id)
	}
	m.mu.Unlock()
	for _, c := range conns {
		c.Close()
	}
}
