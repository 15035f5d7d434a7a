package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrConnClosed is returned by Send once the connection has been torn
// down for any reason. Recv returns the error that caused the teardown,
// which is ErrConnClosed when Close was called.
var ErrConnClosed = errors.New("wire: connection closed")

const (
	// DefaultIdleTimeout is the maintenance task's idle window (§4.1).
	DefaultIdleTimeout = 10 * time.Second
	sendBufferSize     = 64
	recvBufferSize     = 64
	writeWait          = 5 * time.Second
)

// wsConn is the subset of *websocket.Conn the framed connection drives,
// narrowed for testability (a fake can stand in without a real socket).
type wsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetReadDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Conn is a bidirectional, framed message stream over a WebSocket-like
// transport (§4.1). Send is non-blocking; Recv suspends until a packet
// arrives, the connection closes, or the caller's context is canceled.
// Maintenance must be driven concurrently (typically in its own
// goroutine, joined with the caller's command loop) for keep-alives and
// idle-timeout teardown to happen at all.
type Conn struct {
	ws wsConn

	sendCh chan Packet
	recvCh chan Packet
	done   chan struct{}

	closeOnce sync.Once
	closeErr  error
	mu        sync.Mutex // guards closeErr

	idleTimeout time.Duration
}

// NewConn wraps an established WebSocket connection. idleTimeout is the
// ping/pong idle window; zero selects DefaultIdleTimeout.
func NewConn(ws wsConn, idleTimeout time.Duration) *Conn {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Conn{
		ws:          ws,
		sendCh:      make(chan Packet, sendBufferSize),
		recvCh:      make(chan Packet, recvBufferSize),
		done:        make(chan struct{}),
		idleTimeout: idleTimeout,
	}
}

// Send enqueues a packet for delivery. It never blocks: if the outbound
// queue is full the packet is dropped (fanout in Room is best-effort, see
// §4.3), and it returns an error only once the connection is known gone.
func (c *Conn) Send(pkt Packet) error {
	select {
	case <-c.done:
		return ErrConnClosed
	default:
	}

	select {
	case c.sendCh <- pkt:
	default:
		// outbound queue full: drop rather than block the sender
	}
	return nil
}

// Recv suspends until a packet arrives, the connection closes, or ctx is
// canceled.
func (c *Conn) Recv(ctx context.Context) (Packet, error) {
	select {
	case pkt, ok := <-c.recvCh:
		if !ok {
			return Packet{}, c.closedErr()
		}
		return pkt, nil
	case <-c.done:
		return Packet{}, c.closedErr()
	case <-ctx.Done():
		return Packet{}, ctx.Err()
	}
}

func (c *Conn) closedErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closeErr != nil {
		return c.closeErr
	}
	return ErrConnClosed
}

// Maintain runs the read pump, write pump and ping/pong keepalive until
// the connection fails or ctx is canceled, then tears down both sides.
// It runs concurrently with the caller's command loop (in the room
// server, cmd/ember-server runs it beside Server.HandleConn), mirroring
// original_source's `tokio::try_join!(greet_and_run, maintain)`.
func (c *Conn) Maintain(ctx context.Context) error {
	c.ws.SetReadDeadline(time.Now().Add(c.idleTimeout))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(c.idleTimeout))
		return nil
	})

	readErrCh := make(chan error, 1)
	go c.readPump(readErrCh)

	writeErrCh := make(chan error, 1)
	go c.writePump(writeErrCh)

	var err error
	select {
	case err = <-readErrCh:
	case err = <-writeErrCh:
	case <-ctx.Done():
		err = ctx.Err()
	}

	c.teardown(err)
	return err
}

func (c *Conn) readPump(errCh chan<- error) {
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			errCh <- err
			return
		}
		var pkt Packet
		if err := json.Unmarshal(data, &pkt); err != nil {
			continue // malformed frame: ignore, do not tear down the connection
		}
		select {
		case c.recvCh <- pkt:
		case <-c.done:
			return
		}
	}
}

// writePump owns the socket's write side exclusively, per gorilla's
// single-writer rule, so the ping ticker lives here too rather than in a
// separate goroutine racing it for the socket.
func (c *Conn) writePump(errCh chan<- error) {
	ticker := time.NewTicker(c.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case pkt := <-c.sendCh:
			data, err := json.Marshal(pkt)
			if err != nil {
				continue
			}
			if err := c.ws.WriteMessage(websocket.BinaryMessage, data); err != nil {
				errCh <- err
				return
			}
		case <-ticker.C:
			if err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				errCh <- fmt.Errorf("wire: ping failed: %w", err)
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Conn) teardown(err error) {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closeErr = err
		c.mu.Unlock()
		close(c.done)
		c.ws.Close()
	})
}

// Close tears the connection down from the outside, e.g. when a protocol
// violation is detected in the command loop (§4.2 step 4).
func (c *Conn) Close() error {
	c.teardown(ErrConnClosed)
	return nil
}
