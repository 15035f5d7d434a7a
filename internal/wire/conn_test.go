package wire

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeWS is an in-memory stand-in for *websocket.Conn, driven by two
// channels instead of a real socket.
type fakeWS struct {
	mu      sync.Mutex
	inbox   chan []byte
	outbox  chan []byte
	pings   chan struct{}
	closed  bool
	pongHdl func(string) error
}

func newFakeWS() *fakeWS {
	return &fakeWS{
		inbox:  make(chan []byte, 16),
		outbox: make(chan []byte, 16),
		pings:  make(chan struct{}, 16),
	}
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

func (f *fakeWS) WriteControl(_ int, _ []byte, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return io.ErrClosedPipe
	}
	select {
	case f.pings <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeWS) SetReadDeadline(time.Time) error { return nil }

func (f *fakeWS) SetPongHandler(h func(string) error) { f.pongHdl = h }

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

func TestConnSendEnqueuesAndWritePumpFlushes(t *testing.T) {
	ws := newFakeWS()
	c := NewConn(ws, 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Maintain(ctx)

	pkt, err := NewCmd(1, NameWho, WhoCmd{})
	require.NoError(t, err)
	require.NoError(t, c.Send(pkt))

	select {
	case data := <-ws.outbox:
		var got Packet
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, NameWho, got.Name)
		assert.Equal(t, uint64(1), got.ID)
	case <-time.After(time.Second):
		t.Fatal("write pump never flushed the packet")
	}

	cancel()
	ws.Close()
}

func TestConnRecvDecodesInboundFrames(t *testing.T) {
	ws := newFakeWS()
	c := NewConn(ws, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Maintain(ctx)

	pkt, err := NewCmd(7, NameWho, WhoCmd{})
	require.NoError(t, err)
	raw, err := json.Marshal(pkt)
	require.NoError(t, err)
	ws.inbox <- raw

	got, err := c.Recv(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), got.ID)
	assert.Equal(t, NameWho, got.Name)

	cancel()
	ws.Close()
}

func TestConnPingsWithinIdleWindow(t *testing.T) {
	ws := newFakeWS()
	c := NewConn(ws, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Maintain(ctx)

	select {
	case <-ws.pings:
	case <-time.After(time.Second):
		t.Fatal("no ping sent within the idle window")
	}

	cancel()
	ws.Close()
}

func TestConnRecvUnblocksOnClose(t *testing.T) {
	ws := newFakeWS()
	c := NewConn(ws, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- c.Maintain(ctx) }()

	require.NoError(t, c.Close())

	_, err := c.Recv(context.Background())
	assert.ErrorIs(t, err, ErrConnClosed)

	<-done
}

func TestConnSendAfterCloseReturnsError(t *testing.T) {
	ws := newFakeWS()
	c := NewConn(ws, time.Second)
	require.NoError(t, c.Close())

	pkt, err := NewNtf(NameJoinNtf, JoinNtf{})
	require.NoError(t, err)
	assert.ErrorIs(t, c.Send(pkt), ErrConnClosed)
}
