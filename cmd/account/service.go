package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"murmur/cmd/account/ids"
	"murmur/cmd/security/password"
)

// Service implements registration and credential checks on top of a Store.
type Service struct {
	store   Store
	cfg     password.Config
	enc     *password.Encoder
	log     *slog.Logger
	metrics *Metrics
	now     func() time.Time

	// dummy is validated against when the handle is unknown so that a miss
	// costs a full chain scan, like a wrong password does.
	dummy password.Digest
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(log *slog.Logger) ServiceOption {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithEncoder overrides the encoder built from the password config (tests use a seeded source).
func WithEncoder(enc *password.Encoder) ServiceOption {
	return func(s *Service) {
		if enc != nil {
			s.enc = enc
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService builds a Service. cfg supplies the registration policy and the iteration bound.
func NewService(store Store, cfg password.Config, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, errors.New("account: nil store")
	}

	enc, err := cfg.Encoder()
	if err != nil {
		return nil, fmt.Errorf("account: %w", err)
	}

	s := &Service{
		store: store,
		cfg:   cfg,
		enc:   enc,
		log:   slog.Default(),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}

	s.dummy = s.enc.Encode([]byte("dummy-password-for-timing-only"))
	return s, nil
}

// RegisterInput describes a registration request.
type RegisterInput struct {
	Handle      string
	DisplayName *string
	Password    string
	Now         time.Time
}

// Register validates input, encodes the password once and stores the account.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Account, error) {
	const op = "account.Register"

	handle, ok := ValidateHandle(in.Handle)
	if !ok {
		s.metrics.registration(ResultInvalid)
		return Account{}, invalid(op, fmt.Sprintf("handle must be 1-%d characters of letters, digits or underscore", MaxHandleLength))
	}
	displayName, ok := normalizeDisplayName(in.DisplayName)
	if !ok {
		s.metrics.registration(ResultInvalid)
		return Account{}, invalid(op, fmt.Sprintf("display_name must be at most %d characters", MaxDisplayNameLength))
	}
	if err := s.cfg.Validate(in.Password); err != nil {
		s.metrics.registration(ResultInvalid)
		return Account{}, OpError{Op: op, Kind: ErrInvalidInput, Msg: err.Error(), Cause: err}
	}

	now := in.Now
	if now.IsZero() {
		now = s.now()
	}

	id, err := ids.NewULID(now)
	if err != nil {
		s.metrics.registration(ResultError)
		return Account{}, err
	}

	acc, err := s.store.CreateAccount(ctx, CreateAccountInput{
		ID:           id,
		Handle:       handle,
		HandleNorm:   NormalizeHandle(handle),
		DisplayName:  displayName,
		PasswordHash: s.enc.Encode([]byte(in.Password)),
		CreatedAt:    now,
	})
	if err != nil {
		switch {
		case IsConflict(err):
			s.metrics.registration(ResultConflict)
		default:
			s.metrics.registration(ResultError)
		}
		return Account{}, err
	}

	s.metrics.registration(ResultOK)
	s.log.Info("account.register.ok", "account_id", acc.ID, "handle", acc.Handle)
	return acc, nil
}

// Login checks the password for handle.
//
// Unknown handles return NotFoundError, wrong passwords return ErrIncorrectPassword.
// Callers facing the network should not reveal which one happened.
func (s *Service) Login(ctx context.Context, handle, pw string) (Account, error) {
	auth, err := s.authenticate(ctx, "account.Login", handle, pw)
	if err != nil {
		return Account{}, err
	}
	s.log.Info("account.login.ok", "account_id", auth.Account.ID)
	return auth.Account, nil
}

// Delete re-authenticates and then removes the account.
func (s *Service) Delete(ctx context.Context, handle, pw string) error {
	const op = "account.Delete"

	auth, err := s.authenticate(ctx, op, handle, pw)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAccount(ctx, auth.Account.ID); err != nil {
		return err
	}
	s.log.Info("account.delete.ok", "account_id", auth.Account.ID)
	return nil
}

// Get returns the public account for handle.
func (s *Service) Get(ctx context.Context, handle string) (Account, error) {
	const op = "account.Get"

	if _, ok := ValidateHandle(handle); !ok {
		return Account{}, NotFoundError{Op: op, Resource: "account"}
	}
	return s.store.GetAccountByHandle(ctx, handle)
}

// Encoder exposes the encoder in use.
func (s *Service) Encoder() *password.Encoder { return s.enc }

func (s *Service) authenticate(ctx context.Context, op, handle, pw string) (AccountAuth, error) {
	if NormalizeHandle(handle) == "" {
		s.metrics.login(ResultInvalid)
		return AccountAuth{}, invalid(op, "handle is required")
	}

	auth, err := s.store.GetAccountAuthByHandle(ctx, handle)
	if err != nil {
		if !IsNotFound(err) {
			s.metrics.login(ResultError)
			s.log.Error("account.login.lookup.fail", "op", op, "err", err)
			return AccountAuth{}, err
		}
		s.check(ScanDummy, []byte(pw), s.dummy)
		s.metrics.login(ResultNotFound)
		s.log.Info("account.login.fail", "op", op, "reason", ResultNotFound)
		return AccountAuth{}, NotFoundError{Op: op, Resource: "account"}
	}

	if !s.check(ScanStored, []byte(pw), auth.PasswordHash) {
		s.metrics.login(ResultBadPassword)
		s.log.Info("account.login.fail", "op", op, "account_id", auth.Account.ID, "reason", ResultBadPassword)
		return AccountAuth{}, OpError{Op: op, Kind: ErrIncorrectPassword}
	}

	s.metrics.login(ResultOK)
	return auth, nil
}

// check runs one validation and records its cost under kind.
func (s *Service) check(kind string, pw []byte, stored password.Digest) bool {
	start := time.Now()
	depth, ok := s.enc.Locate(pw, stored)
	s.metrics.validated(kind, time.Since(start), depth, ok)
	return ok
}
