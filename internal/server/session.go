package server

import (
	"context"
	"fmt"

	"github.com/emberhall/ember/internal/chatcore"
	"github.com/emberhall/ember/internal/metrics"
	"github.com/emberhall/ember/internal/ratelimit"
	"github.com/emberhall/ember/internal/room"
	"github.com/emberhall/ember/internal/validate"
	"github.com/emberhall/ember/internal/wire"
)

// commandSession drives the Running state (§4.2 step 4): only Nick,
// Send and Who commands are valid here. Any other command, or any
// unexpected Rpl/Ntf from the peer, is a fatal protocol error that
// terminates the connection.
type commandSession struct {
	conn    *wire.Conn
	room    *room.Room
	self    chatcore.Session
	limiter *ratelimit.SendLimiter // nil disables rate limiting, e.g. in tests
}

func (s *commandSession) run(ctx context.Context) error {
	for {
		pkt, err := s.conn.Recv(ctx)
		if err != nil {
			return err
		}
		if err := s.handlePacket(ctx, pkt); err != nil {
			return err
		}
	}
}

func (s *commandSession) handlePacket(ctx context.Context, pkt wire.Packet) error {
	if pkt.Frame != wire.FrameCmd {
		return fmt.Errorf("unexpected %s frame during command loop", pkt.Frame)
	}

	switch pkt.Name {
	case wire.NameNick:
		return s.handleNick(pkt)
	case wire.NameSend:
		return s.handleSend(ctx, pkt)
	case wire.NameWho:
		return s.handleWho(pkt)
	default:
		return fmt.Errorf("unexpected command %q during command loop", pkt.Name)
	}
}

func (s *commandSession) handleNick(pkt wire.Packet) error {
	var cmd wire.NickCmd
	if err := pkt.Decode(&cmd); err != nil {
		return err
	}

	if reason := validate.Nick(cmd.Nick); reason != "" {
		return sendRpl(s.conn, pkt.ID, wire.NameNick, wire.NickRpl{InvalidNick: true, InvalidReason: reason})
	}

	s.self.Nick = cmd.Nick
	if err := sendRpl(s.conn, pkt.ID, wire.NameNick, wire.NickRpl{Success: true, You: s.self.Clone()}); err != nil {
		return err
	}

	s.room.Nick(s.self.ID, cmd.Nick)
	return nil
}

func (s *commandSession) handleSend(ctx context.Context, pkt wire.Packet) error {
	var cmd wire.SendCmd
	if err := pkt.Decode(&cmd); err != nil {
		return err
	}

	if s.limiter != nil && !s.limiter.Allow(ctx, s.room.Name(), s.self.ID) {
		return sendRpl(s.conn, pkt.ID, wire.NameSend, wire.SendRpl{InvalidContent: true, InvalidReason: "rate limited, slow down"})
	}

	if reason := validate.Content(cmd.Content); reason != "" {
		return sendRpl(s.conn, pkt.ID, wire.NameSend, wire.SendRpl{InvalidContent: true, InvalidReason: reason})
	}

	message := s.room.Send(s.self.ID, cmd.Parent, cmd.Content)
	metrics.MessageSent(s.room.Name())
	return sendRpl(s.conn, pkt.ID, wire.NameSend, wire.SendRpl{Success: true, Message: message})
}

func (s *commandSession) handleWho(pkt wire.Packet) error {
	you, others := s.room.Who(s.self.ID)
	return sendRpl(s.conn, pkt.ID, wire.NameWho, wire.WhoRpl{You: you, Others: others})
}
