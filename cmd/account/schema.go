package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the schema and the accounts table if they do not exist.
// password_hash holds the raw 64-byte credential.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, schema string) error {
	if pool == nil {
		return fmt.Errorf("account: nil pool")
	}
	schema = strings.TrimSpace(schema)
	if schema == "" {
		schema = DefaultSchema
	}
	if !pgIdentIsValid(schema) {
		return fmt.Errorf("account: invalid schema identifier")
	}

	ddl := fmt.Sprintf(`
CREATE SCHEMA IF NOT EXISTS %s;

CREATE TABLE IF NOT EXISTS %s (
  id TEXT PRIMARY KEY,
  handle TEXT NOT NULL,
  handle_norm TEXT NOT NULL,
  display_name TEXT NULL,
  password_hash BYTEA NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),

  CONSTRAINT chk_accounts_id_ulid_len CHECK (char_length(id) = 26),
  CONSTRAINT chk_accounts_handle_len CHECK (char_length(handle) BETWEEN 1 AND %d),
  CONSTRAINT chk_accounts_password_hash_len CHECK (octet_length(password_hash) = 64),
  CONSTRAINT uq_accounts_handle_norm UNIQUE (handle_norm)
);
`,
		pgx.Identifier{schema}.Sanitize(),
		pgIdent(schema, "accounts"),
		MaxHandleLength,
	)

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("account: ensure schema: %w", err)
	}
	return nil
}
