package account

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"murmur/cmd/security/password"
)

// DefaultSchema is the Postgres schema used when none is configured.
const DefaultSchema = "murmur"

// PostgresStore implements account persistence over PostgreSQL.
//
// The pgx pool is owned by the caller; this store must NOT close it.
// Schema/table identifiers are quoted through pgx.Identifier.
type PostgresStore struct {
	pool   *pgxpool.Pool
	schema string
}

// PostgresOption configures the store.
type PostgresOption func(*PostgresStore) error

var pgIdentRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// WithSchema sets the Postgres schema used by the account store (default "murmur").
func WithSchema(schema string) PostgresOption {
	return func(s *PostgresStore) error {
		schema = strings.TrimSpace(schema)
		if schema == "" {
			return fmt.Errorf("account: empty schema")
		}
		if !pgIdentIsValid(schema) {
			return fmt.Errorf("account: invalid schema identifier")
		}
		s.schema = schema
		return nil
	}
}

// NewPostgresStore constructs a PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool, opts ...PostgresOption) (*PostgresStore, error) {
	st := &PostgresStore{
		pool:   pool,
		schema: DefaultSchema,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.pool == nil {
		return nil, fmt.Errorf("account: nil pool")
	}
	return st, nil
}

// Schema returns the schema the store reads and writes.
func (s *PostgresStore) Schema() string { return s.schema }

// CreateAccount inserts one account row.
func (s *PostgresStore) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "account.CreateAccount"

	if s == nil || s.pool == nil {
		return Account{}, invalid(op, "nil store")
	}
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.HandleNorm) == "" {
		return Account{}, invalid(op, "missing id or handle")
	}
	if in.PasswordHash.IsZero() {
		return Account{}, invalid(op, "missing password hash")
	}

	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	accounts := pgIdent(s.schema, "accounts")

	_, err := s.pool.Exec(ctx,
		`INSERT INTO `+accounts+` (
		     id, handle, handle_norm, display_name, password_hash, created_at
		   ) VALUES ($1, $2, $3, $4, $5, $6)`,
		in.ID,
		in.Handle,
		in.HandleNorm,
		in.DisplayName,
		in.PasswordHash.Bytes(),
		createdAt,
	)
	if err != nil {
		if field, ok := pgClassifyUniqueViolation(err); ok {
			return Account{}, ConflictError{Op: op, Field: field}
		}
		return Account{}, err
	}

	return Account{
		ID:          in.ID,
		Handle:      in.Handle,
		HandleNorm:  in.HandleNorm,
		DisplayName: copyPtr(in.DisplayName),
		CreatedAt:   createdAt,
	}, nil
}

// GetAccountByID returns an account by its ULID.
func (s *PostgresStore) GetAccountByID(ctx context.Context, id string) (Account, error) {
	const op = "account.GetAccountByID"

	id = strings.TrimSpace(id)
	if id == "" {
		return Account{}, invalid(op, "missing id")
	}
	a, err := s.getAuth(ctx, op, "id", id)
	if err != nil {
		return Account{}, err
	}
	return a.Account, nil
}

// GetAccountByHandle returns an account by handle (case-insensitive).
func (s *PostgresStore) GetAccountByHandle(ctx context.Context, handle string) (Account, error) {
	const op = "account.GetAccountByHandle"

	norm := NormalizeHandle(handle)
	if norm == "" {
		return Account{}, invalid(op, "missing handle")
	}
	a, err := s.getAuth(ctx, op, "handle_norm", norm)
	if err != nil {
		return Account{}, err
	}
	return a.Account, nil
}

// GetAccountAuthByHandle returns an account with its stored credential.
func (s *PostgresStore) GetAccountAuthByHandle(ctx context.Context, handle string) (AccountAuth, error) {
	const op = "account.GetAccountAuthByHandle"

	norm := NormalizeHandle(handle)
	if norm == "" {
		return AccountAuth{}, invalid(op, "missing handle")
	}
	return s.getAuth(ctx, op, "handle_norm", norm)
}

// DeleteAccount removes an account row.
func (s *PostgresStore) DeleteAccount(ctx context.Context, id string) error {
	const op = "account.DeleteAccount"

	if s == nil || s.pool == nil {
		return invalid(op, "nil store")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return invalid(op, "missing id")
	}

	accounts := pgIdent(s.schema, "accounts")
	tag, err := s.pool.Exec(ctx, `DELETE FROM `+accounts+` WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return NotFoundError{Op: op, Resource: "account"}
	}
	return nil
}

// getAuth loads one row by a fixed column; column is never user input.
func (s *PostgresStore) getAuth(ctx context.Context, op, column, value string) (AccountAuth, error) {
	if s == nil || s.pool == nil {
		return AccountAuth{}, invalid(op, "nil store")
	}
	if err := ctx.Err(); err != nil {
		return AccountAuth{}, err
	}

	accounts := pgIdent(s.schema, "accounts")

	var (
		out  AccountAuth
		hash []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, handle, handle_norm, display_name, password_hash, created_at
		   FROM `+accounts+`
		  WHERE `+pgx.Identifier{column}.Sanitize()+` = $1`,
		value,
	).Scan(
		&out.Account.ID,
		&out.Account.Handle,
		&out.Account.HandleNorm,
		&out.Account.DisplayName,
		&hash,
		&out.Account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountAuth{}, NotFoundError{Op: op, Resource: "account"}
		}
		return AccountAuth{}, err
	}

	d, err := password.DigestFromBytes(hash)
	if err != nil {
		return AccountAuth{}, fmt.Errorf("%s: stored credential: %w", op, err)
	}
	out.PasswordHash = d
	out.Account.CreatedAt = out.Account.CreatedAt.UTC()

	return out, nil
}

// ---- helpers ----

// pgIdentIsValid checks if a string is a safe Postgres identifier.
func pgIdentIsValid(s string) bool {
	return pgIdentRe.MatchString(s)
}

// pgIdent safely quotes a schema-qualified identifier: "schema"."name".
func pgIdent(schema, name string) string {
	return pgx.Identifier{schema, name}.Sanitize()
}

func pgClassifyUniqueViolation(err error) (field string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pgErr.Code != "23505" { // unique_violation
		return "", false
	}

	// Prefer stable schema constraint names. Fall back to substring matching.
	c := strings.ToLower(strings.TrimSpace(pgErr.ConstraintName))
	switch {
	case c == "uq_accounts_handle_norm", strings.Contains(c, "handle"):
		return "handle", true
	case c == "accounts_pkey", strings.Contains(c, "pkey"):
		return "id", true
	default:
		return "", true
	}
}
