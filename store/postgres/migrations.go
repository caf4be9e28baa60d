package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the token journal (PostgreSQL).
var Migrations = migrate.NewGroup("token")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_token_events",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS token_events (
    event_id    TEXT PRIMARY KEY,
    ledger_id   TEXT NOT NULL,
    sequence    BIGINT NOT NULL,
    kind        TEXT NOT NULL,
    party_a     TEXT NOT NULL DEFAULT '',
    party_b     TEXT NOT NULL DEFAULT '',
    amount      NUMERIC(78, 0),
    payload     BYTEA NOT NULL,
    prev_digest TEXT NOT NULL DEFAULT '',
    digest      TEXT NOT NULL,
    timestamp   TIMESTAMPTZ NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_token_events_ledger_seq ON token_events (ledger_id, sequence);
CREATE INDEX IF NOT EXISTS idx_token_events_kind ON token_events (ledger_id, kind, sequence);
CREATE INDEX IF NOT EXISTS idx_token_events_party_a ON token_events (party_a, sequence);
CREATE INDEX IF NOT EXISTS idx_token_events_party_b ON token_events (party_b, sequence);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS token_events`)
				return err
			},
		},
	)
}
