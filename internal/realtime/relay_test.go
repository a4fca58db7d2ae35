package realtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorderConn records every event written to it.
type recorderConn struct {
	events []Event
	fail   bool
}

func (c *recorderConn) WriteJSON(v interface{}) error {
	if c.fail {
		return errors.New("write failed")
	}
	c.events = append(c.events, v.(Event))
	return nil
}

func TestEmitToUserDeliversWhenOnline(t *testing.T) {
	registry := NewRegistry()
	relay := NewRelay(registry, NewRooms())

	conn := &recorderConn{}
	registry.Register("user1", conn)

	relay.EmitToUser("user1", "sessionReminder", map[string]string{"type": "upcoming"})

	require.Len(t, conn.events, 1)
	assert.Equal(t, "sessionReminder", conn.events[0].Event)
}

func TestEmitToUserIsNoOpWhenOffline(t *testing.T) {
	relay := NewRelay(NewRegistry(), NewRooms())

	// Must not panic or error: offline delivery is silently dropped.
	relay.EmitToUser("ghost", "videoCallRequest", nil)
}

func TestEmitToRoomIncludesSender(t *testing.T) {
	rooms := NewRooms()
	relay := NewRelay(NewRegistry(), rooms)

	sender := &recorderConn{}
	other := &recorderConn{}
	rooms.Join(sender, "group:abc")
	rooms.Join(other, "group:abc")
	outsider := &recorderConn{}
	rooms.Join(outsider, "group:xyz")

	relay.EmitToRoom("group:abc", "groupMessage", "hi")

	assert.Len(t, sender.events, 1)
	assert.Len(t, other.events, 1)
	assert.Empty(t, outsider.events)
}

func TestEmitToRoomDropsFailedConn(t *testing.T) {
	rooms := NewRooms()
	relay := NewRelay(NewRegistry(), rooms)

	broken := &recorderConn{fail: true}
	rooms.Join(broken, "group:abc")

	relay.EmitToRoom("group:abc", "groupMessage", "hi")

	assert.Empty(t, rooms.Conns("group:abc"))
}

func TestBroadcastOnlineUsers(t *testing.T) {
	registry := NewRegistry()
	relay := NewRelay(registry, NewRooms())

	a := &recorderConn{}
	b := &recorderConn{}
	registry.Register("a", a)
	registry.Register("b", b)

	relay.BroadcastOnlineUsers()

	require.Len(t, a.events, 1)
	assert.Equal(t, "getOnlineUsers", a.events[0].Event)
	assert.ElementsMatch(t, []string{"a", "b"}, a.events[0].Data)
	assert.Len(t, b.events, 1)
}
