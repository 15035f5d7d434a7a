// Package server implements the room server's connection lifecycle:
// room negotiation, identity negotiation, and the in-room command loop
// (§4.2 of the protocol). It owns the registry of live rooms.
package server

import (
	"context"
	"fmt"
	"sync"

	"github.com/emberhall/ember/internal/chatcore"
	"github.com/emberhall/ember/internal/logging"
	"github.com/emberhall/ember/internal/metrics"
	"github.com/emberhall/ember/internal/ratelimit"
	"github.com/emberhall/ember/internal/room"
	"github.com/emberhall/ember/internal/validate"
	"github.com/emberhall/ember/internal/wire"
	"go.uber.org/zap"
)

// Server owns the room registry. A Server is safe for concurrent use by
// many connections; each connection's lifecycle is otherwise handled by
// HandleConn independently.
type Server struct {
	mu      sync.Mutex
	rooms   map[string]*room.Room
	limiter *ratelimit.SendLimiter // nil disables rate limiting
}

// New creates an empty server with no rooms and no Send rate limit.
func New() *Server {
	return &Server{rooms: make(map[string]*room.Room)}
}

// WithSendLimiter attaches a SendLimiter enforced on every session's
// Cmd::Send going forward.
func (s *Server) WithSendLimiter(l *ratelimit.SendLimiter) *Server {
	s.limiter = l
	return s
}

// roomByName returns the named room, creating it on first reference.
// The rooms map's mutex is acquired and released before any per-room
// mutex, so a caller never holds two locks at once (§4.3).
func (s *Server) roomByName(name string) *room.Room {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[name]
	if !ok {
		r = room.New(name)
		s.rooms[name] = r
		metrics.RoomCreated()
	}
	return r
}

// HandleConn drives one connection through room negotiation, identity
// negotiation, and the command loop, tearing the session's room
// membership down on exit regardless of how the loop ended. It returns
// the error that ended the connection, which is never nil; a context
// cancellation requested by the caller yields the context's error.
func (s *Server) HandleConn(ctx context.Context, conn *wire.Conn) error {
	roomName, err := negotiateRoom(ctx, conn)
	if err != nil {
		return fmt.Errorf("room negotiation: %w", err)
	}

	replyID, self, err := negotiateIdentity(ctx, conn)
	if err != nil {
		return fmt.Errorf("identity negotiation: %w", err)
	}

	ctx = logging.WithRoom(logging.WithSession(ctx, self.ID.String()), roomName)
	r := s.roomByName(roomName)

	err = r.WelcomeAndJoin(room.Client{Session: self, Conn: conn}, func(others []chatcore.Session, lastMessage chatcore.MessageID) error {
		body := wire.IdentifyRpl{Success: true, You: self, Others: others, LastMessage: lastMessage}
		pkt, err := wire.NewRpl(replyID, wire.NameIdentify, body)
		if err != nil {
			return err
		}
		return conn.Send(pkt)
	})
	if err != nil {
		return fmt.Errorf("welcome: %w", err)
	}
	metrics.SessionJoined(roomName)

	sess := &commandSession{conn: conn, room: r, self: self, limiter: s.limiter}
	runErr := sess.run(ctx)

	r.Part(self.ID)
	metrics.SessionParted(roomName)
	logging.Info(ctx, "session ended", zap.Error(runErr))
	return runErr
}

// negotiateRoom reads Cmd::Room packets until a valid room name is
// offered, replying RoomRpl::InvalidRoom and looping on invalid names
// (§4.2 step 1). Any other packet kind during this phase is a fatal
// protocol error.
func negotiateRoom(ctx context.Context, conn *wire.Conn) (string, error) {
	for {
		pkt, err := conn.Recv(ctx)
		if err != nil {
			return "", err
		}
		if pkt.Frame != wire.FrameCmd || pkt.Name != wire.NameRoom {
			return "", fmt.Errorf("unexpected packet during room negotiation: frame=%s name=%s", pkt.Frame, pkt.Name)
		}

		var cmd wire.RoomCmd
		if err := pkt.Decode(&cmd); err != nil {
			return "", err
		}

		if reason := validate.Room(cmd.Name); reason != "" {
			if err := sendRpl(conn, pkt.ID, wire.NameRoom, wire.RoomRpl{InvalidRoom: true, InvalidReason: reason}); err != nil {
				return "", err
			}
			continue
		}

		if err := sendRpl(conn, pkt.ID, wire.NameRoom, wire.RoomRpl{Success: true}); err != nil {
			return "", err
		}
		return cmd.Name, nil
	}
}

// negotiateIdentity reads Cmd::Identify packets until a valid
// nick/identity pair is offered (§4.2 step 2), returning the Cmd's
// correlation id (used for the eventual IdentifyRpl::Success sent from
// HandleConn's WelcomeAndJoin callback) and the freshly minted Session.
func negotiateIdentity(ctx context.Context, conn *wire.Conn) (uint64, chatcore.Session, error) {
	for {
		pkt, err := conn.Recv(ctx)
		if err != nil {
			return 0, chatcore.Session{}, err
		}
		if pkt.Frame != wire.FrameCmd || pkt.Name != wire.NameIdentify {
			return 0, chatcore.Session{}, fmt.Errorf("unexpected packet during identity negotiation: frame=%s name=%s", pkt.Frame, pkt.Name)
		}

		var cmd wire.IdentifyCmd
		if err := pkt.Decode(&cmd); err != nil {
			return 0, chatcore.Session{}, err
		}

		if reason := validate.Identity(cmd.Identity); reason != "" {
			if err := sendRpl(conn, pkt.ID, wire.NameIdentify, wire.IdentifyRpl{InvalidNick: true, InvalidReason: reason}); err != nil {
				return 0, chatcore.Session{}, err
			}
			continue
		}
		if reason := validate.Nick(cmd.Nick); reason != "" {
			if err := sendRpl(conn, pkt.ID, wire.NameIdentify, wire.IdentifyRpl{InvalidNick: true, InvalidReason: reason}); err != nil {
				return 0, chatcore.Session{}, err
			}
			continue
		}

		session := chatcore.Session{
			ID:       chatcore.NewSessionID(),
			Nick:     cmd.Nick,
			Identity: chatcore.IdentityOf(cmd.Identity),
		}
		return pkt.ID, session, nil
	}
}

func sendRpl(conn *wire.Conn, id uint64, name string, body any) error {
	pkt, err := wire.NewRpl(id, name, body)
	if err != nil {
		return err
	}
	return conn.Send(pkt)
}
