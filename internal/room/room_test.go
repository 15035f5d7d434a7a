package room

import (
	"testing"

	"github.com/emberhall/ember/internal/chatcore"
	"github.com/emberhall/ember/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recordingConn captures every packet sent to it without needing a real
// socket, standing in for wire.Conn in room-level tests.
type recordingConn struct {
	received []wire.Packet
}

func (c *recordingConn) Send(pkt wire.Packet) error {
	c.received = append(c.received, pkt)
	return nil
}

func newTestClient(nick string) (Client, *recordingConn) {
	rc := &recordingConn{}
	session := chatcore.Session{
		ID:       chatcore.NewSessionID(),
		Nick:     nick,
		Identity: chatcore.IdentityOf(nick + "-identity"),
	}
	return Client{Session: session, Conn: rc}, rc
}

func joinRoom(t *testing.T, r *Room, client Client) {
	t.Helper()
	err := r.WelcomeAndJoin(client, func([]chatcore.Session, chatcore.MessageID) error {
		return nil
	})
	require.NoError(t, err)
}

func TestWelcomeAndJoinExcludesSelfFromOthersAndJoinNtf(t *testing.T) {
	r := New("general")

	a, connA := newTestClient("alice")
	joinRoom(t, r, a)
	assert.Empty(t, connA.received, "the joining client never receives its own JoinNtf")

	b, connB := newTestClient("bob")
	var seenOthers []chatcore.Session
	err := r.WelcomeAndJoin(b, func(others []chatcore.Session, _ chatcore.MessageID) error {
		seenOthers = others
		return nil
	})
	require.NoError(t, err)

	require.Len(t, seenOthers, 1)
	assert.Equal(t, a.Session.ID, seenOthers[0].ID)

	require.Len(t, connA.received, 1, "existing member receives exactly one JoinNtf for the new member")
	var ntf wire.JoinNtf
	require.NoError(t, connA.received[0].Decode(&ntf))
	assert.Equal(t, b.Session.ID, ntf.Who.ID)

	assert.Empty(t, connB.received, "the joining client never receives its own JoinNtf")
}

func TestPartNotifiesRemainingMembers(t *testing.T) {
	r := New("general")
	a, connA := newTestClient("alice")
	joinRoom(t, r, a)
	b, connB := newTestClient("bob")
	joinRoom(t, r, b)

	connA.received = nil
	connB.received = nil

	r.Part(a.Session.ID)

	assert.Empty(t, connA.received)
	require.Len(t, connB.received, 1)
	var ntf wire.PartNtf
	require.NoError(t, connB.received[0].Decode(&ntf))
	assert.Equal(t, a.Session.ID, ntf.Who.ID)
}

func TestNickBroadcastsToOthersNotSelf(t *testing.T) {
	r := New("general")
	a, connA := newTestClient("alice")
	joinRoom(t, r, a)
	b, connB := newTestClient("bob")
	joinRoom(t, r, b)

	connA.received = nil
	connB.received = nil

	who := r.Nick(a.Session.ID, "alice2")
	assert.Equal(t, "alice2", who.Nick)

	assert.Empty(t, connA.received, "the renaming client gets no NickNtf for itself")
	require.Len(t, connB.received, 1)
	var ntf wire.NickNtf
	require.NoError(t, connB.received[0].Decode(&ntf))
	assert.Equal(t, "alice2", ntf.Who.Nick)
}

func TestSendChainsAndExcludesSender(t *testing.T) {
	r := New("general")
	a, connA := newTestClient("alice")
	joinRoom(t, r, a)
	b, connB := newTestClient("bob")
	joinRoom(t, r, b)

	connA.received = nil
	connB.received = nil

	seed := r.lastMessage
	msg1 := r.Send(a.Session.ID, nil, "hello")
	assert.Equal(t, seed, msg1.Pred)
	assert.Empty(t, connA.received, "sender receives no SendNtf for its own message")
	require.Len(t, connB.received, 1)

	msg2 := r.Send(b.Session.ID, nil, "hi back")
	assert.Equal(t, msg1.ID(), msg2.Pred)
	assert.NotEqual(t, msg1.Time, msg2.Time)
}

func TestWhoExcludesSelf(t *testing.T) {
	r := New("general")
	a, _ := newTestClient("alice")
	joinRoom(t, r, a)
	b, _ := newTestClient("bob")
	joinRoom(t, r, b)

	you, others := r.Who(a.Session.ID)
	assert.Equal(t, a.Session.ID, you.ID)
	require.Len(t, others, 1)
	assert.Equal(t, b.Session.ID, others[0].ID)
}
