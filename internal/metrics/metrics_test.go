package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRoomCreatedIncrementsActiveRooms(t *testing.T) {
	before := testutil.ToFloat64(ActiveRooms)
	RoomCreated()
	assert.Equal(t, before+1, testutil.ToFloat64(ActiveRooms))
}

func TestSessionJoinedAndPartedTrackBothGauges(t *testing.T) {
	const room = "metrics-test-room"
	beforeTotal := testutil.ToFloat64(ConnectedSessions)
	beforeRoom := testutil.ToFloat64(RoomSessions.WithLabelValues(room))

	SessionJoined(room)
	assert.Equal(t, beforeTotal+1, testutil.ToFloat64(ConnectedSessions))
	assert.Equal(t, beforeRoom+1, testutil.ToFloat64(RoomSessions.WithLabelValues(room)))

	SessionParted(room)
	assert.Equal(t, beforeTotal, testutil.ToFloat64(ConnectedSessions))
	assert.Equal(t, beforeRoom, testutil.ToFloat64(RoomSessions.WithLabelValues(room)))
}

func TestMessageSentIncrementsPerRoomCounter(t *testing.T) {
	const room = "metrics-test-messages"
	before := testutil.ToFloat64(MessagesSent.WithLabelValues(room))
	MessageSent(room)
	assert.Equal(t, before+1, testutil.ToFloat64(MessagesSent.WithLabelValues(room)))
}

func TestSendRateLimitedIncrementsCounter(t *testing.T) {
	const room = "metrics-test-ratelimit"
	before := testutil.ToFloat64(RateLimitExceeded.WithLabelValues(room))
	SendRateLimited(room)
	assert.Equal(t, before+1, testutil.ToFloat64(RateLimitExceeded.WithLabelValues(room)))
}
