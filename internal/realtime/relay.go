package realtime

import "github.com/sirupsen/logrus"

// Event is the wire envelope for every server-to-client push.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Relay delivers named events to live connections. There is no delivery
// guarantee: an offline recipient is a silent no-op, never an error.
type Relay struct {
	registry *Registry
	rooms    *Rooms
}

// NewRelay creates a relay over the given presence and room registries.
func NewRelay(registry *Registry, rooms *Rooms) *Relay {
	return &Relay{registry: registry, rooms: rooms}
}

// EmitToUser delivers an event to the user's live connection, if any.
func (r *Relay) EmitToUser(userID, event string, payload interface{}) {
	conn, ok := r.registry.Lookup(userID)
	if !ok {
		return
	}
	if err := conn.WriteJSON(Event{Event: event, Data: payload}); err != nil {
		logrus.WithError(err).Warnf("Failed to push %s to user %s", event, userID)
	}
}

// EmitToRoom delivers an event to every connection joined to the room,
// including the sender's.
func (r *Relay) EmitToRoom(room, event string, payload interface{}) {
	for _, conn := range r.rooms.Conns(room) {
		if err := conn.WriteJSON(Event{Event: event, Data: payload}); err != nil {
			logrus.WithError(err).Warnf("Failed to push %s to room %s", event, room)
			r.rooms.Leave(conn, room)
		}
	}
}

// Broadcast delivers an event to every live connection.
func (r *Relay) Broadcast(event string, payload interface{}) {
	for _, conn := range r.registry.All() {
		if err := conn.WriteJSON(Event{Event: event, Data: payload}); err != nil {
			logrus.WithError(err).Warnf("Failed to broadcast %s", event)
		}
	}
}

// BroadcastOnlineUsers pushes the full online-id list to everyone.
// Fired on every connect and disconnect.
func (r *Relay) BroadcastOnlineUsers() {
	r.Broadcast("getOnlineUsers", r.registry.OnlineIDs())
}
