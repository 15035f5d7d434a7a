// Package ratelimit bounds how often a session may issue Cmd::Send,
// so one chatty or malfunctioning client cannot flood a room.
//
// Adapted from the teacher's internal/v1/ratelimit/limiter.go: same
// github.com/ulule/limiter/v3 rate parsing and fail-open-on-store-error
// posture. Trimmed to the one command this protocol lets a client
// trigger repeatedly — there is no HTTP surface here for the teacher's
// per-endpoint/per-IP middleware layering to apply to, and no Redis
// store, since a single room server process has no cluster state to
// share a limiter across.
package ratelimit

import (
	"context"
	"fmt"

	"github.com/emberhall/ember/internal/chatcore"
	"github.com/emberhall/ember/internal/logging"
	"github.com/emberhall/ember/internal/metrics"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"go.uber.org/zap"
)

// SendLimiter rate-limits Cmd::Send per session, shared across every
// room a server process hosts.
type SendLimiter struct {
	limiter *limiter.Limiter
}

// NewSendLimiter builds a SendLimiter enforcing rate, a
// github.com/ulule/limiter/v3 formatted rate string such as "10-M"
// (ten per minute). It returns an error if rate does not parse.
func NewSendLimiter(rate string) (*SendLimiter, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: invalid send rate %q: %w", rate, err)
	}
	return &SendLimiter{limiter: limiter.New(memory.NewStore(), r)}, nil
}

// Allow reports whether session is still under its Send rate in room.
// On a store failure it logs and fails open, since refusing to chat
// because the in-memory limiter store broke is worse than the rare
// unlimited burst that implies.
func (l *SendLimiter) Allow(ctx context.Context, room string, session chatcore.SessionID) bool {
	lctx, err := l.limiter.Get(ctx, session.String())
	if err != nil {
		logging.Warn(ctx, "rate limiter store failed, allowing request", zap.Error(err))
		return true
	}

	if lctx.Reached {
		metrics.SendRateLimited(room)
		return false
	}
	return true
}
