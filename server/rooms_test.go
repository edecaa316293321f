package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStubClient() *Client {
	return &Client{
		send: make(chan interface{}, MaxClientMessageQueueSize),
		id:   "stub",
	}
}

func drain(c *Client) []interface{} {
	var msgs []interface{}
	for {
		select {
		case m := <-c.send:
			msgs = append(msgs, m)
		default:
			return msgs
		}
	}
}

func TestRoomJoinAndBroadcast(t *testing.T) {
	r := NewRoomRegistry(nil)
	a, b := newStubClient(), newStubClient()
	r.Join("c1", a)
	r.Join("c1", b)

	sent := r.Broadcast("c1", "hello", nil)

	assert.Equal(t, 2, sent)
	assert.Len(t, drain(a), 1)
	assert.Len(t, drain(b), 1)
}

func TestRoomBroadcastExcludesSender(t *testing.T) {
	r := NewRoomRegistry(nil)
	a, b := newStubClient(), newStubClient()
	r.Join("c1", a)
	r.Join("c1", b)

	sent := r.Broadcast("c1", "quiet", a)

	assert.Equal(t, 1, sent)
	assert.Empty(t, drain(a))
	assert.Len(t, drain(b), 1)
}

func TestRoomIsolation(t *testing.T) {
	r := NewRoomRegistry(nil)
	a, b := newStubClient(), newStubClient()
	r.Join("c1", a)
	r.Join("c2", b)

	r.Broadcast("c1", "only c1", nil)

	assert.Len(t, drain(a), 1)
	assert.Empty(t, drain(b))
}

func TestJoinSecondCanvasLeavesFirst(t *testing.T) {
	r := NewRoomRegistry(nil)
	a := newStubClient()
	r.Join("c1", a)
	r.Join("c2", a)

	assert.Equal(t, 0, r.Members("c1"))
	assert.Equal(t, 1, r.Members("c2"))
	assert.Equal(t, "c2", a.canvasID)
}

func TestLeaveDropsEmptyRoom(t *testing.T) {
	r := NewRoomRegistry(nil)
	a := newStubClient()
	r.Join("c1", a)
	require.Equal(t, 1, r.Rooms())

	r.Leave(a)

	assert.Equal(t, 0, r.Rooms())
	assert.Equal(t, "", a.canvasID)
}

func TestBroadcastToEmptyRoom(t *testing.T) {
	r := NewRoomRegistry(nil)
	assert.Equal(t, 0, r.Broadcast("nowhere", "msg", nil))
}
