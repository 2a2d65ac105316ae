package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"civicdesk/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestHub() (*Hub, *metrics.Metrics) {
	m := metrics.NewNop()
	return NewHub(m, zap.NewNop()), m
}

func registered(t *testing.T, h *Hub, id string, buffer int) *Client {
	t.Helper()
	c := newClient(id, h, buffer)
	require.NoError(t, h.Register(c))
	return c
}

func drain(c *Client) []outbound {
	var out []outbound
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return out
			}
			var msg outbound
			_ = json.Unmarshal(frame, &msg)
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestHub_RoomIsolation(t *testing.T) {
	h, _ := newTestHub()
	alice := registered(t, h, "a", 8)
	bob := registered(t, h, "b", 8)
	staff := registered(t, h, "s", 8)

	require.NoError(t, h.JoinUser(alice, "u1"))
	require.NoError(t, h.JoinUser(bob, "u2"))
	require.NoError(t, h.JoinRole(staff, "staff"))

	assert.Equal(t, 1, h.EmitToUser("u1", "COMPLAINT_UPDATED", map[string]string{"id": "c1"}))
	assert.Equal(t, 1, h.EmitToRole("staff", "EVENT_CREATED", nil))
	assert.Equal(t, 0, h.EmitToRole("admin", "EVENT_CREATED", nil))

	got := drain(alice)
	require.Len(t, got, 1)
	assert.Equal(t, EventNotification, got[0].Event)
	assert.Equal(t, "COMPLAINT_UPDATED", got[0].Data.Type)
	assert.Empty(t, drain(bob))
	staffGot := drain(staff)
	require.Len(t, staffGot, 1)
	assert.Equal(t, "EVENT_CREATED", staffGot[0].Data.Type)
}

func TestHub_JoinIsIdempotent(t *testing.T) {
	h, _ := newTestHub()
	c := registered(t, h, "a", 8)

	require.NoError(t, h.JoinUser(c, "u1"))
	require.NoError(t, h.JoinUser(c, "u1"))
	require.NoError(t, h.JoinRole(c, "admin"))
	require.NoError(t, h.JoinRole(c, "admin"))

	assert.Equal(t, 1, h.RoomSize(userRoom("u1")))
	assert.Equal(t, 1, h.RoomSize(roleRoom("admin")))
	assert.Equal(t, 1, h.EmitToRole("admin", "X", nil))
	assert.Len(t, drain(c), 1)
}

func TestHub_SecondIdentityReplacesFirst(t *testing.T) {
	h, _ := newTestHub()
	c := registered(t, h, "a", 8)

	require.NoError(t, h.JoinUser(c, "u1"))
	require.NoError(t, h.JoinUser(c, "u2"))

	assert.Zero(t, h.RoomSize(userRoom("u1")))
	assert.Equal(t, 1, h.RoomSize(userRoom("u2")))
	assert.Zero(t, h.EmitToUser("u1", "X", nil))
}

func TestHub_MultipleConnectionsPerIdentity(t *testing.T) {
	h, _ := newTestHub()
	laptop := registered(t, h, "a", 8)
	phone := registered(t, h, "b", 8)

	require.NoError(t, h.JoinUser(laptop, "u1"))
	require.NoError(t, h.JoinUser(phone, "u1"))

	assert.Equal(t, 2, h.EmitToUser("u1", "X", nil))
}

func TestHub_UnregisterRemovesEveryMembership(t *testing.T) {
	h, m := newTestHub()
	c := registered(t, h, "a", 8)
	require.NoError(t, h.JoinUser(c, "u1"))
	require.NoError(t, h.JoinRole(c, "admin"))
	require.NoError(t, h.JoinRole(c, "staff"))

	h.Unregister(c)
	h.Unregister(c)

	assert.Zero(t, h.ConnectionCount())
	assert.Zero(t, h.RoomSize(userRoom("u1")))
	assert.Zero(t, h.RoomSize(roleRoom("admin")))
	assert.Zero(t, h.RoomSize(roleRoom("staff")))
	assert.Zero(t, h.EmitToUser("u1", "X", nil))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Connections))

	_, open := <-c.send
	assert.False(t, open)

	assert.ErrorIs(t, h.JoinUser(c, "u1"), ErrNotRegistered)
}

func TestHub_BroadcastToAll(t *testing.T) {
	h, m := newTestHub()
	clients := []*Client{
		registered(t, h, "a", 8),
		registered(t, h, "b", 8),
		registered(t, h, "c", 8),
	}
	require.NoError(t, h.JoinRole(clients[0], "admin"))

	assert.Equal(t, 3, h.BroadcastToAll("ANNOUNCEMENT_PUBLISHED", map[string]string{"id": "a1"}))
	for _, c := range clients {
		assert.Len(t, drain(c), 1)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(m.NotificationsEmitted.WithLabelValues("all")))
}

func TestHub_FullBufferDropsWithoutBlocking(t *testing.T) {
	h, m := newTestHub()
	slow := registered(t, h, "slow", 1)
	fast := registered(t, h, "fast", 8)
	require.NoError(t, h.JoinRole(slow, "staff"))
	require.NoError(t, h.JoinRole(fast, "staff"))

	assert.Equal(t, 2, h.EmitToRole("staff", "first", nil))
	assert.Equal(t, 1, h.EmitToRole("staff", "second", nil))

	slowGot := drain(slow)
	require.Len(t, slowGot, 1)
	assert.Equal(t, "first", slowGot[0].Data.Type)
	assert.Len(t, drain(fast), 2)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsDropped))
}

func TestHub_Close(t *testing.T) {
	h, _ := newTestHub()
	c := registered(t, h, "a", 8)
	require.NoError(t, h.JoinUser(c, "u1"))

	h.Close()
	h.Close()

	assert.Zero(t, h.ConnectionCount())
	_, open := <-c.send
	assert.False(t, open)
	assert.ErrorIs(t, h.Register(newClient("b", h, 1)), ErrHubClosed)
	assert.Zero(t, h.BroadcastToAll("X", nil))
}

func TestHub_ConcurrentEmitAndTeardown(t *testing.T) {
	h, _ := newTestHub()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		c := registered(t, h, string(rune('a'+i)), 4)
		require.NoError(t, h.JoinRole(c, "staff"))
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.EmitToRole("staff", "X", j)
			}
		}()
		go func(c *Client) {
			defer wg.Done()
			h.Unregister(c)
		}(c)
	}
	wg.Wait()
	assert.Zero(t, h.ConnectionCount())
}
