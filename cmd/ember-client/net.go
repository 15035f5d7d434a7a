package main

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gorilla/websocket"

	"github.com/emberhall/ember/internal/chatcore"
	"github.com/emberhall/ember/internal/wire"
)

// netClient owns the connection to one room server: negotiation,
// correlation-id bookkeeping, and a channel of every Ntf/Rpl the server
// sends once negotiation has completed.
type netClient struct {
	conn        *wire.Conn
	self        chatcore.Session
	others      []chatcore.Session
	lastMessage chatcore.MessageID
	nextID      uint64
	inbound     chan wire.Packet
}

// dial connects to addr, upgrades to a WebSocket, and negotiates room
// membership and identity (§4.2 steps 1-2), returning a netClient
// positioned to enter the Running state.
func dial(ctx context.Context, addr, room, nick, identity string) (*netClient, error) {
	url := fmt.Sprintf("ws://%s/", addr)
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	conn := wire.NewConn(ws, wire.DefaultIdleTimeout)
	c := &netClient{conn: conn, inbound: make(chan wire.Packet, 64)}

	if err := c.negotiateRoom(ctx, room); err != nil {
		conn.Close()
		return nil, err
	}
	if err := c.negotiateIdentity(ctx, nick, identity); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *netClient) nextCorrelationID() uint64 {
	return atomic.AddUint64(&c.nextID, 1)
}

func (c *netClient) negotiateRoom(ctx context.Context, room string) error {
	for {
		id := c.nextCorrelationID()
		pkt, err := wire.NewCmd(id, wire.NameRoom, wire.RoomCmd{Name: room})
		if err != nil {
			return err
		}
		if err := c.conn.Send(pkt); err != nil {
			return err
		}

		reply, err := c.conn.Recv(ctx)
		if err != nil {
			return err
		}
		var rpl wire.RoomRpl
		if err := reply.Decode(&rpl); err != nil {
			return err
		}
		if rpl.Success {
			return nil
		}
		if !rpl.InvalidRoom {
			return fmt.Errorf("unexpected room reply")
		}
		return fmt.Errorf("invalid room: %s", rpl.InvalidReason)
	}
}

func (c *netClient) negotiateIdentity(ctx context.Context, nick, identity string) error {
	id := c.nextCorrelationID()
	pkt, err := wire.NewCmd(id, wire.NameIdentify, wire.IdentifyCmd{Nick: nick, Identity: identity})
	if err != nil {
		return err
	}
	if err := c.conn.Send(pkt); err != nil {
		return err
	}

	reply, err := c.conn.Recv(ctx)
	if err != nil {
		return err
	}
	var rpl wire.IdentifyRpl
	if err := reply.Decode(&rpl); err != nil {
		return err
	}
	if !rpl.Success {
		return fmt.Errorf("invalid identity/nick: %s", rpl.InvalidReason)
	}

	c.self = rpl.You
	c.others = rpl.Others
	c.lastMessage = rpl.LastMessage
	return nil
}

// readLoop forwards every packet the server sends after negotiation
// into inbound, until the connection closes or ctx is canceled.
func (c *netClient) readLoop(ctx context.Context) {
	defer close(c.inbound)
	for {
		pkt, err := c.conn.Recv(ctx)
		if err != nil {
			return
		}
		select {
		case c.inbound <- pkt:
		case <-ctx.Done():
			return
		}
	}
}

// sendCmd enqueues a Cmd packet with a fresh correlation id and returns
// that id, so the caller can match the eventual Rpl.
func (c *netClient) sendCmd(name string, body any) (uint64, error) {
	id := c.nextCorrelationID()
	pkt, err := wire.NewCmd(id, name, body)
	if err != nil {
		return 0, err
	}
	return id, c.conn.Send(pkt)
}
