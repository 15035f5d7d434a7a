package vault

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/emberhall/ember/internal/logging"
	"go.uber.org/zap"
)

// migration is one forward-only schema step, run inside the single
// migrating transaction alongside every migration before it.
type migration func(ctx context.Context, tx *sql.Tx) error

// migrations runs in order; user_version records how many have applied.
// Append, never edit or remove, an entry here when the schema changes.
var migrations = []migration{migrateV1}

// migrate brings the database up to the latest schema version,
// mirroring original_source's migrate.rs: read user_version, run every
// migration after it inside one transaction, then write the new
// user_version and commit.
func (v *Vault) migrate(ctx context.Context) error {
	tx, err := v.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("vault: begin migration: %w", err)
	}
	defer tx.Rollback()

	var version int
	if err := tx.QueryRowContext(ctx, "SELECT * FROM pragma_user_version").Scan(&version); err != nil {
		return fmt.Errorf("vault: read user_version: %w", err)
	}

	total := len(migrations)
	for i := version; i < total; i++ {
		logging.Info(ctx, "migrating vault", zap.Int("from", i), zap.Int("to", i+1), zap.Int("total", total))
		if err := migrations[i](ctx, tx); err != nil {
			return fmt.Errorf("vault: migration %d: %w", i+1, err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", total)); err != nil {
		return fmt.Errorf("vault: write user_version: %w", err)
	}
	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `
		CREATE TABLE messages (
			room     TEXT NOT NULL,
			id       TEXT NOT NULL,
			parent   TEXT,
			pred     TEXT NOT NULL,
			time     INTEGER NOT NULL,
			identity TEXT NOT NULL,
			nick     TEXT NOT NULL,
			content  TEXT NOT NULL,

			PRIMARY KEY (room, id)
		) STRICT;

		CREATE INDEX messages_room_time ON messages (room, time);

		CREATE TABLE spans (
			room  TEXT NOT NULL,
			start TEXT NOT NULL,
			end   TEXT NOT NULL,

			PRIMARY KEY (room, start, end),
			FOREIGN KEY (room, start) REFERENCES messages (room, id),
			FOREIGN KEY (room, end) REFERENCES messages (room, id)
		) STRICT;

		CREATE VIEW trees (room, id) AS
		SELECT room, id
		FROM messages
		WHERE parent IS NULL
		UNION
		SELECT *
		FROM (
			SELECT room, parent
			FROM messages
			WHERE parent IS NOT NULL
			EXCEPT
			SELECT room, id
			FROM messages
		);

		CREATE TABLE rooms (
			name        TEXT NOT NULL PRIMARY KEY,
			last_joined INTEGER NOT NULL
		) STRICT;
	`)
	return err
}
