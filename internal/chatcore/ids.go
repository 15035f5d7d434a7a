// Package chatcore defines the value types shared by the room server and
// the terminal client: identities, sessions and messages.
package chatcore

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// Identity is an opaque content-addressed token derived from a
// user-supplied identity string. It is stable within a session.
type Identity [32]byte

// SessionID is an opaque random token. Uniqueness within a room is an
// invariant enforced by Room.WelcomeAndJoin: a collision is treated as fatal.
type SessionID [32]byte

// MessageID is an opaque content-addressed token derived from a message's
// fields. See Message.ID.
type MessageID [32]byte

// IdentityOf derives an Identity from a user-supplied identity string.
func IdentityOf(s string) Identity {
	return Identity(blake2b.Sum256([]byte("identity:" + s)))
}

// NewSessionID generates a fresh random SessionID. The entropy source is
// a v4 UUID, hashed to fit the opaque token shape used throughout the
// protocol.
func NewSessionID() SessionID {
	raw := uuid.New()
	return SessionID(blake2b.Sum256(raw[:]))
}

// NewMessageSeed generates the fresh, unpredictable MessageID a new room
// uses as its chain's starting Pred, mirroring original_source's
// `MessageId::of(&format!("{}", rand::thread_rng().gen::<u64>()))`. The
// seed is never itself delivered to a client as a real message.
func NewMessageSeed() MessageID {
	raw := uuid.New()
	return MessageID(blake2b.Sum256(raw[:]))
}

// String renders all 32 bytes of the token as a 64-character hex string, used for logging and
// for the wire encoding of ids.
func (i Identity) String() string  { return hex.EncodeToString(i[:]) }
func (s SessionID) String() string { return hex.EncodeToString(s[:]) }
func (m MessageID) String() string { return hex.EncodeToString(m[:]) }

// MarshalText implements encoding.TextMarshaler so these ids serialize as
// plain hex strings in JSON packets instead of base64 byte arrays.
func (i Identity) MarshalText() ([]byte, error)  { return []byte(i.String()), nil }
func (s SessionID) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (m MessageID) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (i *Identity) UnmarshalText(text []byte) error  { return unmarshalToken(text, i[:]) }
func (s *SessionID) UnmarshalText(text []byte) error { return unmarshalToken(text, s[:]) }
func (m *MessageID) UnmarshalText(text []byte) error { return unmarshalToken(text, m[:]) }

func unmarshalToken(text []byte, dst []byte) error {
	decoded, err := hex.DecodeString(string(text))
	if err != nil {
		return fmt.Errorf("decode token: %w", err)
	}
	if len(decoded) != len(dst) {
		return fmt.Errorf("token has wrong length: got %d want %d", len(decoded), len(dst))
	}
	copy(dst, decoded)
	return nil
}

// Zero reports whether the id is the all-zero value. A room's chain does
// not start from the zero id: its first message's Pred is the random seed
// from NewMessageSeed.
func (m MessageID) Zero() bool { return m == MessageID{} }

// LastPossibleMessageID returns the supremum of MessageID's ordering: an
// all-ones token that compares greater than any real, hash-derived id.
// The layout engine's Path type uses this as a sentinel segment to
// represent an editor/pseudo cursor position beneath a parent, ordered
// after all of that parent's real children.
func LastPossibleMessageID() MessageID {
	var id MessageID
	for i := range id {
		id[i] = 0xff
	}
	return id
}

// Compare returns -1, 0 or 1 as m is less than, equal to, or greater
// than other, comparing the underlying bytes as a big-endian unsigned
// integer. Used by Path's lexicographic ordering.
func (m MessageID) Compare(other MessageID) int {
	for i := range m {
		if m[i] != other[i] {
			if m[i] < other[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
