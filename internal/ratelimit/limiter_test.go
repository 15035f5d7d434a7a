package ratelimit

import (
	"context"
	"testing"

	"github.com/emberhall/ember/internal/chatcore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSendLimiterRejectsMalformedRate(t *testing.T) {
	_, err := NewSendLimiter("not-a-rate")
	require.Error(t, err)
}

func TestSendLimiterAllowsUnderRateAndBlocksOver(t *testing.T) {
	l, err := NewSendLimiter("2-S")
	require.NoError(t, err)

	ctx := context.Background()
	session := chatcore.NewSessionID()

	assert.True(t, l.Allow(ctx, "lobby", session))
	assert.True(t, l.Allow(ctx, "lobby", session))
	assert.False(t, l.Allow(ctx, "lobby", session))
}

func TestSendLimiterTracksSessionsIndependently(t *testing.T) {
	l, err := NewSendLimiter("1-S")
	require.NoError(t, err)

	ctx := context.Background()
	alice := chatcore.NewSessionID()
	bob := chatcore.NewSessionID()

	assert.True(t, l.Allow(ctx, "lobby", alice))
	assert.False(t, l.Allow(ctx, "lobby", alice))
	assert.True(t, l.Allow(ctx, "lobby", bob))
}
