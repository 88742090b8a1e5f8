package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// testClient builds a Client that is never attached to a socket; only its send
// queue is exercised.
func testClient(userID string) *Client {
	return NewClient(nil, userID, nil, nil, NewCodec(3, 10))
}

func TestRegisterRejectsDuplicateSession(t *testing.T) {
	reg := NewRegistry()

	require.NoError(t, reg.Register("alice", testClient("alice")))
	require.ErrorIs(t, reg.Register("alice", testClient("alice")), ErrSessionActive)
	require.Equal(t, 1, reg.Len())
}

func TestJoinIsIdempotent(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("alice", testClient("alice")))

	require.True(t, reg.Join("alice", "abc123"))
	require.False(t, reg.Join("alice", "abc123"))

	require.Len(t, reg.MembersOf("abc123"), 1)
}

func TestJoinUnknownUserIsIgnored(t *testing.T) {
	reg := NewRegistry()

	require.False(t, reg.Join("ghost", "abc123"))
	require.Empty(t, reg.MembersOf("abc123"))
}

func TestLeaveRemovesOnlyThatRoom(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("alice", testClient("alice")))

	reg.Join("alice", "abc123")
	reg.Join("alice", "xyz789")

	require.True(t, reg.Leave("alice", "abc123"))
	require.False(t, reg.Leave("alice", "abc123"))

	require.False(t, reg.IsMember("alice", "abc123"))
	require.True(t, reg.IsMember("alice", "xyz789"))
}

func TestDeregisterRemovesFromAllRooms(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("alice", testClient("alice")))
	require.NoError(t, reg.Register("bob", testClient("bob")))

	reg.Join("alice", "abc123")
	reg.Join("alice", "xyz789")
	reg.Join("bob", "abc123")

	reg.Deregister("alice")

	require.Len(t, reg.MembersOf("abc123"), 1)
	require.Empty(t, reg.MembersOf("xyz789"))
	require.Equal(t, 1, reg.Len())

	// A user that was never registered is a no-op.
	reg.Deregister("ghost")
}

func TestMembersOfSnapshotsCurrentMembership(t *testing.T) {
	reg := NewRegistry()

	clients := map[string]*Client{}
	for _, id := range []string{"alice", "bob", "carol"} {
		c := testClient(id)
		clients[id] = c
		require.NoError(t, reg.Register(id, c))
		reg.Join(id, "abc123")
	}

	reg.Leave("carol", "abc123")

	members := reg.MembersOf("abc123")
	require.Len(t, members, 2)
	require.Contains(t, members, clients["alice"])
	require.Contains(t, members, clients["bob"])
}

func TestRegistryConcurrentMutation(t *testing.T) {
	reg := NewRegistry()

	const users = 32

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		userID := fmt.Sprintf("user-%d", i)
		require.NoError(t, reg.Register(userID, testClient(userID)))

		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			for j := 0; j < 100; j++ {
				reg.Join(id, "abc123")
				reg.MembersOf("abc123")
				reg.Leave(id, "abc123")
			}
			reg.Join(id, "abc123")
		}(userID)
	}

	wg.Wait()

	require.Len(t, reg.MembersOf("abc123"), users)
}
