package server

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/emberhall/ember/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeWS is a minimal in-memory websocket stand-in, mirroring the one in
// internal/wire's own tests but kept local so this package's tests do
// not need to reach into wire's unexported test helpers.
type fakeWS struct {
	mu     sync.Mutex
	inbox  chan []byte
	outbox chan []byte
	closed bool
}

func newFakeWS() *fakeWS {
	return &fakeWS{inbox: make(chan []byte, 16), outbox: make(chan []byte, 16)}
}

func (f *fakeWS) ReadMessage() (int, []byte, error) {
	data, ok := <-f.inbox
	if !ok {
		return 0, nil, io.EOF
	}
	return 2, data, nil
}

func (f *fakeWS) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return io.ErrClosedPipe
	}
	f.outbox <- data
	return nil
}

func (f *fakeWS) WriteControl(_ int, _ []byte, _ time.Time) error { return nil }
func (f *fakeWS) SetReadDeadline(time.Time) error                 { return nil }
func (f *fakeWS) SetPongHandler(func(string) error)               {}

func (f *fakeWS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.inbox)
	return nil
}

// testClient wraps a *wire.Conn with helpers for sending Cmd packets and
// reading the next Rpl/Ntf off its outbox.
type testClient struct {
	ws   *fakeWS
	conn *wire.Conn
}

func newTestClient(t *testing.T, ctx context.Context) *testClient {
	t.Helper()
	ws := newFakeWS()
	conn := wire.NewConn(ws, time.Second)
	go conn.Maintain(ctx)
	return &testClient{ws: ws, conn: conn}
}

func (c *testClient) sendCmd(t *testing.T, id uint64, name string, body any) {
	t.Helper()
	pkt, err := wire.NewCmd(id, name, body)
	require.NoError(t, err)
	raw, err := json.Marshal(pkt)
	require.NoError(t, err)
	c.ws.inbox <- raw
}

func (c *testClient) recvPacket(t *testing.T) wire.Packet {
	t.Helper()
	select {
	case data := <-c.ws.outbox:
		var pkt wire.Packet
		require.NoError(t, json.Unmarshal(data, &pkt))
		return pkt
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a packet")
		return wire.Packet{}
	}
}

func identify(t *testing.T, c *testClient, room, nick, identity string) {
	t.Helper()
	c.sendCmd(t, 1, wire.NameRoom, wire.RoomCmd{Name: room})
	roomRpl := c.recvPacket(t)
	var rr wire.RoomRpl
	require.NoError(t, roomRpl.Decode(&rr))
	require.True(t, rr.Success)

	c.sendCmd(t, 2, wire.NameIdentify, wire.IdentifyCmd{Nick: nick, Identity: identity})
}

func TestJoinOrderAndIdentifyReply(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := newTestClient(t, ctx)
	doneA := make(chan error, 1)
	go func() { doneA <- s.HandleConn(ctx, a.conn) }()
	identify(t, a, "r", "alice", "alice-identity")

	aRpl := a.recvPacket(t)
	var aIdentify wire.IdentifyRpl
	require.NoError(t, aRpl.Decode(&aIdentify))
	assert.True(t, aIdentify.Success)
	assert.Empty(t, aIdentify.Others)

	b := newTestClient(t, ctx)
	doneB := make(chan error, 1)
	go func() { doneB <- s.HandleConn(ctx, b.conn) }()
	identify(t, b, "r", "bob", "bob-identity")

	bRpl := b.recvPacket(t)
	var bIdentify wire.IdentifyRpl
	require.NoError(t, bRpl.Decode(&bIdentify))
	assert.True(t, bIdentify.Success)
	require.Len(t, bIdentify.Others, 1)
	assert.Equal(t, "alice", bIdentify.Others[0].Nick)

	joinNtf := a.recvPacket(t)
	assert.Equal(t, wire.NameJoinNtf, joinNtf.Name)
	var jn wire.JoinNtf
	require.NoError(t, joinNtf.Decode(&jn))
	assert.Equal(t, "bob", jn.Who.Nick)

	a.ws.Close()
	b.ws.Close()
	<-doneA
	<-doneB
}

func TestInvalidRoomNameReprompts(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := newTestClient(t, ctx)
	done := make(chan error, 1)
	go func() { done <- s.HandleConn(ctx, a.conn) }()

	a.sendCmd(t, 1, wire.NameRoom, wire.RoomCmd{Name: ""})
	rpl := a.recvPacket(t)
	var rr wire.RoomRpl
	require.NoError(t, rpl.Decode(&rr))
	assert.True(t, rr.InvalidRoom)
	assert.False(t, rr.Success)

	a.sendCmd(t, 2, wire.NameRoom, wire.RoomCmd{Name: "general"})

	rpl2 := a.recvPacket(t)
	var rr2 wire.RoomRpl
	require.NoError(t, rpl2.Decode(&rr2))
	assert.True(t, rr2.Success)

	a.ws.Close()
	<-done
}

func TestSendExcludesSenderReceivesOnlyRpl(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := newTestClient(t, ctx)
	doneA := make(chan error, 1)
	go func() { doneA <- s.HandleConn(ctx, a.conn) }()
	identify(t, a, "r2", "alice", "alice-identity")
	a.recvPacket(t) // IdentifyRpl

	b := newTestClient(t, ctx)
	doneB := make(chan error, 1)
	go func() { doneB <- s.HandleConn(ctx, b.conn) }()
	identify(t, b, "r2", "bob", "bob-identity")
	b.recvPacket(t) // IdentifyRpl
	a.recvPacket(t) // JoinNtf for bob

	a.sendCmd(t, 3, wire.NameSend, wire.SendCmd{Content: "hello"})
	sendRpl := a.recvPacket(t)
	var sr wire.SendRpl
	require.NoError(t, sendRpl.Decode(&sr))
	assert.True(t, sr.Success)
	assert.Equal(t, "hello", sr.Message.Content)

	sendNtf := b.recvPacket(t)
	assert.Equal(t, wire.FrameNtf, sendNtf.Frame)
	var ntf wire.SendNtf
	require.NoError(t, sendNtf.Decode(&ntf))
	assert.Equal(t, "hello", ntf.Message.Content)

	a.ws.Close()
	b.ws.Close()
	<-doneA
	<-doneB
}
