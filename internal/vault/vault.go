// Package vault persists a room's message history to a local SQLite
// database, so the terminal client can reopen a room with its scrollback
// already warm instead of waiting on the server to replay it.
//
// Ported from original_source/src/vault/migrate.rs: same user_version
// migration loop, same STRICT table shape, adapted from the original's
// monotonic per-room integer message ids to this protocol's opaque,
// content-addressed MessageID (stored as hex text, matching the
// MarshalText encoding chatcore already uses on the wire).
package vault

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emberhall/ember/internal/chatcore"
	_ "modernc.org/sqlite"
)

// Vault is a handle to one SQLite-backed history database, shared by
// every room the client has joined.
type Vault struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at path and
// runs any pending migrations. An empty path opens an in-memory
// database, used for ephemeral mode (config.Ephemeral) and in tests.
func Open(ctx context.Context, path string) (*Vault, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("vault: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // modernc.org/sqlite serializes writers; avoid lock-busy errors

	v := &Vault{db: db}
	if err := v.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return v, nil
}

// Close releases the underlying database handle.
func (v *Vault) Close() error {
	return v.db.Close()
}

// InsertMessage records msg as part of room's history, leaving any
// existing row with the same id in place (a message's fields never change
// once sent, so this is purely idempotent re-insertion on reconnect). A
// message without a parent is stored with a NULL parent.
func (v *Vault) InsertMessage(ctx context.Context, room string, msg chatcore.Message) error {
	var parent sql.NullString
	if msg.Parent != nil {
		parent = sql.NullString{String: msg.Parent.String(), Valid: true}
	}
	_, err := v.db.ExecContext(ctx, `
		INSERT INTO messages (room, id, parent, pred, time, identity, nick, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (room, id) DO NOTHING
	`, room, msg.ID().String(), parent, msg.Pred.String(), msg.Time, msg.Identity.String(), msg.Nick, msg.Content)
	if err != nil {
		return fmt.Errorf("vault: insert message: %w", err)
	}
	return nil
}

// RecordSpan marks [start, end] as a known-contiguous, gap-free run of
// history for room — every message from start down to end is connected
// by an unbroken Pred chain. The client records one after a successful
// backfill so it knows not to re-request that range on reconnect.
func (v *Vault) RecordSpan(ctx context.Context, room string, start, end chatcore.MessageID) error {
	_, err := v.db.ExecContext(ctx, `
		INSERT INTO spans (room, start, end) VALUES (?, ?, ?)
		ON CONFLICT (room, start, end) DO NOTHING
	`, room, start.String(), end.String())
	if err != nil {
		return fmt.Errorf("vault: record span: %w", err)
	}
	return nil
}

// Roots returns every root id recorded for room via the trees view: a
// root is either a message with no parent, or a parent referenced by
// some message but not itself present (an unloaded root the client has
// not backfilled yet).
func (v *Vault) Roots(ctx context.Context, room string) ([]chatcore.MessageID, error) {
	rows, err := v.db.QueryContext(ctx, `SELECT id FROM trees WHERE room = ?`, room)
	if err != nil {
		return nil, fmt.Errorf("vault: query trees: %w", err)
	}
	defer rows.Close()

	var out []chatcore.MessageID
	for rows.Next() {
		var hex string
		if err := rows.Scan(&hex); err != nil {
			return nil, fmt.Errorf("vault: scan root: %w", err)
		}
		var id chatcore.MessageID
		if err := id.UnmarshalText([]byte(hex)); err != nil {
			return nil, fmt.Errorf("vault: decode root: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// RecordJoin timestamps room as just joined, so Rooms can list
// previously-joined rooms most-recent first (e.g. to offer autojoin on
// client startup, see config.Euph).
func (v *Vault) RecordJoin(ctx context.Context, room string, atUnixNanos int64) error {
	_, err := v.db.ExecContext(ctx, `
		INSERT INTO rooms (name, last_joined) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET last_joined = excluded.last_joined
	`, room, atUnixNanos)
	if err != nil {
		return fmt.Errorf("vault: record join: %w", err)
	}
	return nil
}

// Rooms returns every room this vault has recorded a join for, most
// recently joined first.
func (v *Vault) Rooms(ctx context.Context) ([]string, error) {
	rows, err := v.db.QueryContext(ctx, `SELECT name FROM rooms ORDER BY last_joined DESC`)
	if err != nil {
		return nil, fmt.Errorf("vault: query rooms: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("vault: scan room: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Messages loads every message recorded for room, in no particular
// order — callers hand the result straight to store.NewMemory, which
// re-derives ordering and tree structure from each message's own Time
// and Parent fields.
func (v *Vault) Messages(ctx context.Context, room string) ([]chatcore.Message, error) {
	rows, err := v.db.QueryContext(ctx, `
		SELECT parent, pred, time, identity, nick, content
		FROM messages
		WHERE room = ?
	`, room)
	if err != nil {
		return nil, fmt.Errorf("vault: query messages: %w", err)
	}
	defer rows.Close()

	var out []chatcore.Message
	for rows.Next() {
		var parent sql.NullString
		var pred, identity, nick, content string
		var t uint64
		if err := rows.Scan(&parent, &pred, &t, &identity, &nick, &content); err != nil {
			return nil, fmt.Errorf("vault: scan message: %w", err)
		}

		msg := chatcore.Message{Time: t, Nick: nick, Content: content}
		if err := msg.Pred.UnmarshalText([]byte(pred)); err != nil {
			return nil, fmt.Errorf("vault: decode pred: %w", err)
		}
		if err := msg.Identity.UnmarshalText([]byte(identity)); err != nil {
			return nil, fmt.Errorf("vault: decode identity: %w", err)
		}
		if parent.Valid && parent.String != "" {
			var p chatcore.MessageID
			if err := p.UnmarshalText([]byte(parent.String)); err != nil {
				return nil, fmt.Errorf("vault: decode parent: %w", err)
			}
			msg.Parent = &p
		}
		out = append(out, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("vault: iterate messages: %w", err)
	}
	return out, nil
}
