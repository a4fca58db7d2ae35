package realtime

import "sync"

// Rooms tracks which connections have joined which named broadcast rooms.
// A connection may belong to any number of rooms; leaving an unjoined room
// is a no-op.
type Rooms struct {
	mu    sync.Mutex
	rooms map[string]map[Conn]bool
}

// NewRooms creates an empty room registry.
func NewRooms() *Rooms {
	return &Rooms{rooms: make(map[string]map[Conn]bool)}
}

// Join adds conn to the named room.
func (r *Rooms) Join(conn Conn, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[room]; !ok {
		r.rooms[room] = make(map[Conn]bool)
	}
	r.rooms[room][conn] = true
}

// Leave removes conn from the named room.
func (r *Rooms) Leave(conn Conn, room string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if conns, ok := r.rooms[room]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(r.rooms, room)
		}
	}
}

// LeaveAll removes conn from every room it has joined. Called on disconnect.
func (r *Rooms) LeaveAll(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for room, conns := range r.rooms {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(r.rooms, room)
		}
	}
}

// Conns returns the connections currently joined to the named room.
func (r *Rooms) Conns(room string) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	conns := make([]Conn, 0, len(r.rooms[room]))
	for conn := range r.rooms[room] {
		conns = append(conns, conn)
	}
	return conns
}
