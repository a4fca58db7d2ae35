package realtime

import "sync"

// Conn is the write side of one live client connection.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
}

// Registry maps a user id to its current live connection.
// Absence means the user is offline, which callers treat as a silent no-op.
type Registry struct {
	mu      sync.Mutex
	clients map[string]Conn
}

// NewRegistry creates an empty presence registry.
func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Conn)}
}

// Register records conn as the user's live connection, replacing any previous one.
func (r *Registry) Register(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[userID] = conn
}

// Unregister removes the user's connection, but only if conn is still the
// registered one. A reconnect must not be clobbered by the old connection's
// deferred cleanup.
func (r *Registry) Unregister(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.clients[userID]; ok && current == conn {
		delete(r.clients, userID)
	}
}

// Lookup returns the user's live connection, or false if offline.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conn, ok := r.clients[userID]
	return conn, ok
}

// OnlineIDs returns the ids of all currently connected users.
func (r *Registry) OnlineIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}

// All returns every live connection.
func (r *Registry) All() []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := make([]Conn, 0, len(r.clients))
	for _, conn := range r.clients {
		conns = append(conns, conn)
	}
	return conns
}
