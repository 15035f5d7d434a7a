// Package wire defines the on-the-wire packet envelope and the framed,
// duplex connection that carries it (§4.1, §6 of the protocol).
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/emberhall/ember/internal/chatcore"
)

// Frame is one packet's kind, as carried in the envelope's "frame" field.
type Frame string

const (
	FrameCmd Frame = "cmd"
	FrameRpl Frame = "rpl"
	FrameNtf Frame = "ntf"
)

// Packet is the wire envelope for every message exchanged over a
// Connection. Cmd and Rpl carry a correlation ID; Ntf does not.
//
// Body holds the type-specific payload as raw JSON, keyed by Name so the
// receiver can dispatch to the right Go struct before unmarshaling, the
// same two-stage decode the teacher uses for its protobuf oneof payload
// (internal/v1/room/room.go's type switch on msg.Payload), translated to
// JSON's lack of a native sum type.
type Packet struct {
	Frame Frame           `json:"frame"`
	ID    uint64          `json:"id,omitempty"`
	Name  string          `json:"name"`
	Body  json.RawMessage `json:"body,omitempty"`
}

// Command and reply/notification names, used as Packet.Name.
const (
	NameRoom     = "room"
	NameIdentify = "identify"
	NameNick     = "nick"
	NameSend     = "send"
	NameWho      = "who"

	NameJoinNtf = "join"
	NamePartNtf = "part"
)

// --- Cmd payloads (client -> server) ---

type RoomCmd struct {
	Name string `json:"name"`
}

type IdentifyCmd struct {
	Nick     string `json:"nick"`
	Identity string `json:"identity"`
}

type NickCmd struct {
	Nick string `json:"nick"`
}

type SendCmd struct {
	Parent  *chatcore.MessageID `json:"parent,omitempty"`
	Content string              `json:"content"`
}

type WhoCmd struct{}

// --- Rpl payloads (server -> client, correlated) ---

type RoomRpl struct {
	Success      bool   `json:"success"`
	InvalidRoom  bool   `json:"invalidRoom,omitempty"`
	InvalidReason string `json:"invalidReason,omitempty"`
}

type IdentifyRpl struct {
	Success       bool              `json:"success"`
	You           chatcore.Session  `json:"you,omitempty"`
	Others        []chatcore.Session `json:"others,omitempty"`
	LastMessage   chatcore.MessageID `json:"lastMessage,omitempty"`
	InvalidNick   bool              `json:"invalidNick,omitempty"`
	InvalidReason string            `json:"invalidReason,omitempty"`
}

type NickRpl struct {
	Success       bool             `json:"success"`
	You           chatcore.Session `json:"you,omitempty"`
	InvalidNick   bool             `json:"invalidNick,omitempty"`
	InvalidReason string           `json:"invalidReason,omitempty"`
}

type SendRpl struct {
	Success        bool             `json:"success"`
	Message        chatcore.Message `json:"message,omitempty"`
	InvalidContent bool             `json:"invalidContent,omitempty"`
	InvalidReason  string           `json:"invalidReason,omitempty"`
}

type WhoRpl struct {
	You    chatcore.Session   `json:"you"`
	Others []chatcore.Session `json:"others"`
}

// --- Ntf payloads (server -> client, unsolicited) ---

type JoinNtf struct {
	Who chatcore.Session `json:"who"`
}

type PartNtf struct {
	Who chatcore.Session `json:"who"`
}

type NickNtf struct {
	Who chatcore.Session `json:"who"`
}

type SendNtf struct {
	Message chatcore.Message `json:"message"`
}

// NewCmd builds a Cmd packet, marshaling body to JSON.
func NewCmd(id uint64, name string, body any) (Packet, error) {
	return newPacket(FrameCmd, id, name, body)
}

// NewRpl builds a Rpl packet correlated with a Cmd's id.
func NewRpl(id uint64, name string, body any) (Packet, error) {
	return newPacket(FrameRpl, id, name, body)
}

// NewNtf builds an unsolicited Ntf packet.
func NewNtf(name string, body any) (Packet, error) {
	return newPacket(FrameNtf, 0, name, body)
}

func newPacket(frame Frame, id uint64, name string, body any) (Packet, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return Packet{}, fmt.Errorf("marshal %s body: %w", name, err)
	}
	return Packet{Frame: frame, ID: id, Name: name, Body: raw}, nil
}

// Decode unmarshals the packet's Body into dst.
func (p Packet) Decode(dst any) error {
	if len(p.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(p.Body, dst); err != nil {
		return fmt.Errorf("decode %s body: %w", p.Name, err)
	}
	return nil
}
