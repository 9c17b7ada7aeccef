package account

import (
	"context"
	"strings"
	"sync"
)

// MemoryStore is a dev-only fallback when the database is not configured.
// Accounts live for the lifetime of the process.
type MemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]AccountAuth
	byHandle map[string]string // handle_norm -> id
}

// NewMemoryStore constructs an in-memory Store implementation.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:     make(map[string]AccountAuth),
		byHandle: make(map[string]string),
	}
}

// CreateAccount inserts a new account; handle_norm and id are unique.
func (s *MemoryStore) CreateAccount(ctx context.Context, in CreateAccountInput) (Account, error) {
	const op = "account.CreateAccount"

	if err := ctx.Err(); err != nil {
		return Account{}, err
	}
	if strings.TrimSpace(in.ID) == "" || strings.TrimSpace(in.HandleNorm) == "" {
		return Account{}, invalid(op, "missing id or handle")
	}
	if in.PasswordHash.IsZero() {
		return Account{}, invalid(op, "missing password hash")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byHandle[in.HandleNorm]; ok {
		return Account{}, ConflictError{Op: op, Field: "handle"}
	}
	if _, ok := s.byID[in.ID]; ok {
		return Account{}, ConflictError{Op: op, Field: "id"}
	}

	acc := Account{
		ID:          in.ID,
		Handle:      in.Handle,
		HandleNorm:  in.HandleNorm,
		DisplayName: copyPtr(in.DisplayName),
		CreatedAt:   in.CreatedAt,
	}
	s.byID[in.ID] = AccountAuth{Account: acc, PasswordHash: in.PasswordHash}
	s.byHandle[in.HandleNorm] = in.ID

	return cloneAccount(acc), nil
}

// GetAccountByID returns an account by its ULID.
func (s *MemoryStore) GetAccountByID(ctx context.Context, id string) (Account, error) {
	if err := ctx.Err(); err != nil {
		return Account{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[id]
	if !ok {
		return Account{}, NotFoundError{Op: "account.GetAccountByID", Resource: "account"}
	}
	return cloneAccount(a.Account), nil
}

// GetAccountByHandle returns an account by handle (case-insensitive).
func (s *MemoryStore) GetAccountByHandle(ctx context.Context, handle string) (Account, error) {
	a, err := s.lookup(ctx, "account.GetAccountByHandle", handle)
	if err != nil {
		return Account{}, err
	}
	return cloneAccount(a.Account), nil
}

// GetAccountAuthByHandle returns an account with its credential.
func (s *MemoryStore) GetAccountAuthByHandle(ctx context.Context, handle string) (AccountAuth, error) {
	a, err := s.lookup(ctx, "account.GetAccountAuthByHandle", handle)
	if err != nil {
		return AccountAuth{}, err
	}
	a.Account = cloneAccount(a.Account)
	return a, nil
}

// DeleteAccount removes an account and frees its handle.
func (s *MemoryStore) DeleteAccount(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.byID[id]
	if !ok {
		return NotFoundError{Op: "account.DeleteAccount", Resource: "account"}
	}
	delete(s.byID, id)
	delete(s.byHandle, a.Account.HandleNorm)
	return nil
}

// Len returns the number of stored accounts.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

func (s *MemoryStore) lookup(ctx context.Context, op, handle string) (AccountAuth, error) {
	if err := ctx.Err(); err != nil {
		return AccountAuth{}, err
	}

	norm := NormalizeHandle(handle)

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byHandle[norm]
	if !ok {
		return AccountAuth{}, NotFoundError{Op: op, Resource: "account"}
	}
	return s.byID[id], nil
}

func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneAccount(a Account) Account {
	a.DisplayName = copyPtr(a.DisplayName)
	return a
}
