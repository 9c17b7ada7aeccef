package accountapi

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"murmur/cmd/account"
	"murmur/cmd/security/password"
)

// Handler wires HTTP account endpoints to the account service.
type Handler struct {
	log *slog.Logger
	cfg Config
	svc *account.Service

	ipFailures     *failureLog
	handleFailures *failureLog

	now func() time.Time
}

// NewHandler constructs an account Handler.
func NewHandler(log *slog.Logger, svc *account.Service, cfg Config) (*Handler, error) {
	if log == nil {
		log = slog.Default()
	}
	if svc == nil {
		return nil, errors.New("accountapi: nil service")
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}

	tiers := cfg.lockoutTiers()
	ipLocked := func(now time.Time, failures []time.Time) bool {
		blocked, _ := evaluateWindowThrottle(now, failures, cfg.LoginIPMax, cfg.LoginIPWindow)
		return blocked
	}
	handleLocked := func(now time.Time, failures []time.Time) bool {
		blocked, _ := evaluateProgressiveLockout(now, failures, tiers)
		return blocked
	}

	return &Handler{
		log:            log,
		cfg:            cfg,
		svc:            svc,
		ipFailures:     newFailureLog(cfg.horizon(), ipLocked),
		handleFailures: newFailureLog(cfg.horizon(), handleLocked),
		now:            func() time.Time { return time.Now().UTC() },
	}, nil
}

// Register wires account routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("POST /accounts/register", h.handleRegister)
	mux.HandleFunc("POST /accounts/login", h.handleLogin)
	mux.HandleFunc("POST /accounts/delete", h.handleDelete)
	mux.HandleFunc("GET /accounts/{handle}", h.handleGet)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	acc, err := h.svc.Register(r.Context(), account.RegisterInput{
		Handle:      req.Handle,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Now:         h.now(),
	})
	if err != nil {
		h.writeRegisterError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(acc))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	req, ip, ok := h.credentials(w, r)
	if !ok {
		return
	}

	acc, err := h.svc.Login(r.Context(), req.Handle, req.Password)
	if err != nil {
		h.writeCredentialError(w, "account.login", req.Handle, ip, err)
		return
	}

	h.handleFailures.reset(account.NormalizeHandle(req.Handle))
	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	req, ip, ok := h.credentials(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), req.Handle, req.Password); err != nil {
		h.writeCredentialError(w, "account.delete", req.Handle, ip, err)
		return
	}

	h.handleFailures.reset(account.NormalizeHandle(req.Handle))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	acc, err := h.svc.Get(r.Context(), r.PathValue("handle"))
	if err != nil {
		if account.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", "account not found")
			return
		}
		h.log.Error("account.get.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acc))
}

// credentials decodes a handle/password body and applies login throttling before any
// credential work is done.
func (h *Handler) credentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, net.IP, bool) {
	var req credentialsRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeDecodeError(w, err)
		return credentialsRequest{}, nil, false
	}
	if account.NormalizeHandle(req.Handle) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "handle and password are required")
		return credentialsRequest{}, nil, false
	}

	now := h.now()
	ip := clientIP(r, h.cfg.TrustProxy)

	if ip != nil {
		failures := h.ipFailures.recent(ip.String(), now)
		if blocked, retry := evaluateWindowThrottle(now, failures, h.cfg.LoginIPMax, h.cfg.LoginIPWindow); blocked {
			h.log.Warn("account.login.throttled", "scope", "ip", "ip", ip.String(), "retry_after", retry)
			writeRateLimited(w, retry)
			return credentialsRequest{}, nil, false
		}
	}

	failures := h.handleFailures.recent(account.NormalizeHandle(req.Handle), now)
	if blocked, retry := evaluateProgressiveLockout(now, failures, h.cfg.lockoutTiers()); blocked {
		h.log.Warn("account.login.throttled", "scope", "handle", "retry_after", retry)
		writeRateLimited(w, retry)
		return credentialsRequest{}, nil, false
	}

	return req, ip, true
}

func (h *Handler) recordFailure(handle string, ip net.IP) {
	now := h.now()
	if ip != nil {
		h.ipFailures.record(ip.String(), now)
	}
	h.handleFailures.record(account.NormalizeHandle(handle), now)
}

func (h *Handler) writeCredentialError(w http.ResponseWriter, op, handle string, ip net.IP, err error) {
	switch {
	case account.IsNotFound(err), account.IsIncorrectPassword(err):
		// Unknown handle and wrong password look the same on the wire.
		h.recordFailure(handle, ip)
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
	case account.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid handle or password")
	default:
		h.log.Error(op+".fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

func (h *Handler) writeRegisterError(w http.ResponseWriter, err error) {
	switch {
	case account.IsConflict(err):
		writeError(w, http.StatusConflict, "handle_taken", "handle is already registered")
	case errors.Is(err, password.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, "password_too_short", "password is too short")
	case errors.Is(err, password.ErrPasswordTooLong):
		writeError(w, http.StatusBadRequest, "password_too_long", "password is too long")
	case errors.Is(err, password.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, "weak_password", "password is too easy to guess")
	case account.IsInvalidInput(err):
		var opErr account.OpError
		msg := "invalid request"
		if errors.As(err, &opErr) && opErr.Msg != "" {
			msg = opErr.Msg
		}
		writeError(w, http.StatusBadRequest, "invalid_request", msg)
	default:
		h.log.Error("account.register.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}
