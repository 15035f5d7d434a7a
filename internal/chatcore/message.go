package chatcore

import (
	"encoding/binary"
	"time"

	"golang.org/x/crypto/blake2b"
)

// Message is one entry in a room's hash-chained history. Time is
// monotonic per room (see Room.Send); Pred links to the previous
// message's ID, forming an immutable hash chain over the room's history.
//
// spec.md models Time as a u128; Go has no native 128-bit integer and a
// nanosecond-resolution uint64 Unix timestamp does not wrap until about
// the year 2554, so Time is a uint64 here. The monotonic-forcing rule in Room.Send is
// unaffected by the narrower width.
type Message struct {
	Time     uint64    `json:"time"`
	Pred     MessageID `json:"pred"`
	Parent   *MessageID `json:"parent,omitempty"`
	Identity Identity  `json:"identity"`
	Nick     string    `json:"nick"`
	Content  string    `json:"content"`
}

// ID derives the message's content-addressed id deterministically from
// its other fields, so two servers replaying the same send operations
// arrive at identical ids.
func (m Message) ID() MessageID {
	h, _ := blake2b.New256(nil)
	var timeBuf [8]byte
	binary.BigEndian.PutUint64(timeBuf[:], m.Time)
	h.Write(timeBuf[:])
	h.Write(m.Pred[:])
	if m.Parent != nil {
		h.Write(m.Parent[:])
	}
	h.Write(m.Identity[:])
	h.Write([]byte(m.Nick))
	h.Write([]byte(m.Content))
	var sum MessageID
	copy(sum[:], h.Sum(nil))
	return sum
}

// NowNanos returns the current wall-clock time as nanoseconds since the
// Unix epoch, the clock source used by Room.Send's monotonic-forcing
// rule (spec.md §4.3, open question (b)).
func NowNanos() uint64 {
	return uint64(time.Now().UnixNano())
}

// NextTimestamp forces strictly increasing message timestamps even when
// the wall clock has not advanced between two sends in the same room,
// mirroring original_source's util::timestamp_after.
func NextTimestamp(last uint64) uint64 {
	now := NowNanos()
	if now > last {
		return now
	}
	return last + 1
}
