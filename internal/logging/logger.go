// Package logging provides a process-wide zap logger with context-carried
// correlation fields (session, room), mirroring the teacher's logging
// package but scoped to the chat domain's identifiers.
package logging

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger *zap.Logger
	once   sync.Once
)

type contextKey string

const (
	SessionIDKey contextKey = "session_id"
	RoomNameKey  contextKey = "room_name"
	PeerAddrKey  contextKey = "peer_addr"
)

// Initialize builds the global logger. development selects a
// human-readable, colorized encoder; production selects JSON with an
// ISO8601 timestamp. Safe to call more than once; only the first call
// takes effect.
func Initialize(development bool) error {
	var err error
	once.Do(func() {
		var config zap.Config
		if development {
			config = zap.NewDevelopmentConfig()
			config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		} else {
			config = zap.NewProductionConfig()
			config.EncoderConfig.TimeKey = "timestamp"
			config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		}

		config.OutputPaths = []string{"stdout"}
		config.ErrorOutputPaths = []string{"stderr"}

		logger, err = config.Build(zap.AddCallerSkip(1))
	})
	return err
}

// Get returns the global logger, falling back to a development logger
// if Initialize was never called (e.g. in tests).
func Get() *zap.Logger {
	if logger == nil {
		l, _ := zap.NewDevelopment()
		return l
	}
	return logger
}

func Info(ctx context.Context, msg string, fields ...zap.Field) {
	Get().Info(msg, appendContextFields(ctx, fields)...)
}

func Warn(ctx context.Context, msg string, fields ...zap.Field) {
	Get().Warn(msg, appendContextFields(ctx, fields)...)
}

func Error(ctx context.Context, msg string, fields ...zap.Field) {
	Get().Error(msg, appendContextFields(ctx, fields)...)
}

// WithSession returns a context carrying the session id for later log
// calls to pick up.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// WithRoom returns a context carrying the room name for later log calls
// to pick up.
func WithRoom(ctx context.Context, room string) context.Context {
	return context.WithValue(ctx, RoomNameKey, room)
}

func appendContextFields(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil {
		return fields
	}
	if sid, ok := ctx.Value(SessionIDKey).(string); ok {
		fields = append(fields, zap.String("session_id", sid))
	}
	if room, ok := ctx.Value(RoomNameKey).(string); ok {
		fields = append(fields, zap.String("room", room))
	}
	if addr, ok := ctx.Value(PeerAddrKey).(string); ok {
		fields = append(fields, zap.String("peer_addr", addr))
	}
	fields = append(fields, zap.String("service", "ember-server"))
	return fields
}
