package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublishReachesEveryRoomMember(t *testing.T) {
	reg := NewRegistry()
	broadcaster := NewBroadcaster(reg)

	clients := map[string]*Client{}
	for _, id := range []string{"alice", "bob"} {
		c := testClient(id)
		clients[id] = c
		require.NoError(t, reg.Register(id, c))
		reg.Join(id, "abc123")
	}

	env := Envelope{
		Type:     TypeChat,
		RoomSlug: "abc123",
		Message:  json.RawMessage(`{"type":"rectangle","x":1,"y":2,"width":10,"height":5}`),
	}

	require.Equal(t, 2, broadcaster.Publish("abc123", env))

	for id, c := range clients {
		select {
		case frame := <-c.send:
			var decoded Envelope
			require.NoError(t, json.Unmarshal(frame, &decoded))
			require.Equal(t, TypeChat, decoded.Type)
			require.Equal(t, "abc123", decoded.RoomSlug)
		default:
			t.Fatalf("no frame queued for %s", id)
		}
	}
}

func TestPublishSkipsRoomsWithoutMembers(t *testing.T) {
	reg := NewRegistry()
	broadcaster := NewBroadcaster(reg)

	require.NoError(t, reg.Register("alice", testClient("alice")))
	reg.Join("alice", "abc123")

	require.Equal(t, 0, broadcaster.Publish("xyz789", Envelope{Type: TypeLeave, RoomSlug: "xyz789"}))
}

func TestPublishDropsFrameForSaturatedPeerOnly(t *testing.T) {
	reg := NewRegistry()
	broadcaster := NewBroadcaster(reg)

	alice := testClient("alice")
	bob := testClient("bob")
	for id, c := range map[string]*Client{"alice": alice, "bob": bob} {
		require.NoError(t, reg.Register(id, c))
		reg.Join(id, "abc123")
	}

	// Fill bob's send queue to capacity so the next enqueue cannot succeed.
	for i := 0; i < sendQueueSize; i++ {
		require.True(t, bob.enqueue([]byte(`{}`)))
	}

	env := Envelope{
		Type:     TypeChat,
		RoomSlug: "abc123",
		Message:  json.RawMessage(`{"type":"circle","x":0,"y":0,"width":40,"height":40}`),
	}

	require.Equal(t, 1, broadcaster.Publish("abc123", env))

	select {
	case frame := <-alice.send:
		var decoded Envelope
		require.NoError(t, json.Unmarshal(frame, &decoded))
		require.Equal(t, TypeChat, decoded.Type)
	default:
		t.Fatal("alice should still receive the frame")
	}

	require.Len(t, bob.send, sendQueueSize)

	// bob stays registered and joined; only the frame was dropped.
	require.True(t, reg.IsMember("bob", "abc123"))
}
