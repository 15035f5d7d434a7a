// Package room implements a single chat room's locked, in-memory state:
// membership, the hash-chained message history, and the fanout of
// notifications to connected members (§4.3 of the protocol).
package room

import (
	"fmt"
	"sync"

	"github.com/emberhall/ember/internal/chatcore"
	"github.com/emberhall/ember/internal/wire"
)

// Sender is the narrow slice of *wire.Conn that Room needs: a
// non-blocking, best-effort enqueue. Narrowing to an interface lets
// room-level tests substitute a recording fake instead of a real
// connection.
type Sender interface {
	Send(pkt wire.Packet) error
}

// Client pairs a room member's Session with the framed connection used
// to notify it. Room never reads from the connection; it only writes.
type Client struct {
	Session chatcore.Session
	Conn    Sender
}

// Room holds one room's exclusive, locked state. All mutation and all
// notification fanout for a room happens while its mutex is held, which
// is what gives every member the same total order of events (§4.3,
// testable property 1-3).
type Room struct {
	mu   sync.Mutex
	name string

	clients       map[chatcore.SessionID]*Client
	lastMessage   chatcore.MessageID
	lastTimestamp uint64
}

// New creates an empty room with a freshly seeded message chain. The
// seed id has no predecessor and is never itself delivered to a client;
// it only ever appears as a Pred/LastMessage value.
func New(name string) *Room {
	return &Room{
		name:          name,
		clients:       make(map[chatcore.SessionID]*Client),
		lastMessage:   chatcore.NewMessageSeed(),
		lastTimestamp: chatcore.NowNanos(),
	}
}

// Name returns the room's name.
func (r *Room) Name() string { return r.name }

// notifyAll sends packet to every current member. Delivery is
// best-effort: Conn.Send never blocks and a member whose connection has
// already failed simply drops the notification, since it is about to be
// parted anyway.
func (r *Room) notifyAll(pkt wire.Packet) {
	for _, c := range r.clients {
		_ = c.Conn.Send(pkt)
	}
}

// notifyExcept is notifyAll but skips the member whose own action caused
// the notification (they get a correlated Rpl instead, never see their
// own Ntf — §4.3, property 5).
func (r *Room) notifyExcept(except chatcore.SessionID, pkt wire.Packet) {
	for id, c := range r.clients {
		if id == except {
			continue
		}
		_ = c.Conn.Send(pkt)
	}
}

// WelcomeAndJoin sends the correlated IdentifyRpl to the joining client
// and adds it to the room's membership, in that order, under a single
// lock acquisition. welcome is invoked with a snapshot of the room
// exactly as it stood before client joined, so the joining client's own
// identity never appears in its "others" list and it is never sent its
// own JoinNtf. Only once welcome returns without error is the JoinNtf
// broadcast to the existing members and the client added to the room.
func (r *Room) WelcomeAndJoin(client Client, welcome func(others []chatcore.Session, lastMessage chatcore.MessageID) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	others := make([]chatcore.Session, 0, len(r.clients))
	for _, c := range r.clients {
		others = append(others, c.Session.Clone())
	}

	if err := welcome(others, r.lastMessage); err != nil {
		return err
	}

	if _, exists := r.clients[client.Session.ID]; exists {
		// Session ids are random tokens; a collision should never
		// happen in practice.
		panic(fmt.Sprintf("room %q: duplicated session id %s", r.name, client.Session.ID))
	}

	r.notifyAll(mustNtf(wire.NameJoinNtf, wire.JoinNtf{Who: client.Session.Clone()}))
	r.clients[client.Session.ID] = &client

	return nil
}

// Part removes a member and notifies everyone, including the departing
// client's final state, that it left.
func (r *Room) Part(id chatcore.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[id]
	if !ok {
		return // already gone, e.g. double teardown from read+write pump
	}
	delete(r.clients, id)

	r.notifyAll(mustNtf(wire.NamePartNtf, wire.PartNtf{Who: client.Session.Clone()}))
}

// Nick updates a member's nickname and notifies every other member;
// the member itself is told via the caller's correlated NickRpl,
// never via a NickNtf (§4.3, property 5).
func (r *Room) Nick(id chatcore.SessionID, nick string) chatcore.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	client := r.mustClient(id)
	client.Session.Nick = nick
	who := client.Session.Clone()

	r.notifyExcept(id, mustNtf(wire.NameNick, wire.NickNtf{Who: who}))
	return who
}

// Send appends a new message to the room's hash chain and broadcasts it
// to every member except the sender, who receives only the correlated
// SendRpl built by the caller from the returned Message.
func (r *Room) Send(id chatcore.SessionID, parent *chatcore.MessageID, content string) chatcore.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	client := r.mustClient(id)
	r.lastTimestamp = chatcore.NextTimestamp(r.lastTimestamp)

	message := chatcore.Message{
		Time:     r.lastTimestamp,
		Pred:     r.lastMessage,
		Parent:   parent,
		Identity: client.Session.Identity,
		Nick:     client.Session.Nick,
		Content:  content,
	}
	r.lastMessage = message.ID()

	r.notifyExcept(id, mustNtf(wire.NameSend, wire.SendNtf{Message: message}))
	return message
}

// Who returns the requesting member's own session and everyone else's,
// for the WhoCmd reply.
func (r *Room) Who(id chatcore.SessionID) (chatcore.Session, []chatcore.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	you := r.mustClient(id).Session.Clone()
	others := make([]chatcore.Session, 0, len(r.clients))
	for otherID, c := range r.clients {
		if otherID == id {
			continue
		}
		others = append(others, c.Session.Clone())
	}
	return you, others
}

func (r *Room) mustClient(id chatcore.SessionID) *Client {
	client, ok := r.clients[id]
	if !ok {
		panic(fmt.Sprintf("room %q: invalid session id %s", r.name, id))
	}
	return client
}

func mustNtf(name string, body any) wire.Packet {
	pkt, err := wire.NewNtf(name, body)
	if err != nil {
		// Ntf payloads are all plain structs of already-validated
		// fields; a marshal failure here means a programming error,
		// not a runtime condition callers can recover from.
		panic(fmt.Sprintf("wire: marshal %s notification: %v", name, err))
	}
	return pkt
}
