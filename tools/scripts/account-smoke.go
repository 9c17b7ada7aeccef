// Package main provides a CI-friendly HTTP smoke test for the murmur account API.
//
// It validates:
//   - register returns 201 and an account id
//   - duplicate handle is refused with 409
//   - login succeeds with the right password
//   - wrong password and unknown handle both return 401 invalid_credentials
//   - public lookup by handle
//   - delete, after which login fails
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const maxReadBytes = 1 << 20 // 1MiB

type smokeClient struct {
	base    string
	http    *http.Client
	timeout time.Duration
	verbose bool
}

type accountBody struct {
	Account struct {
		ID     string `json:"id"`
		Handle string `json:"handle"`
	} `json:"account"`
}

type errorBody struct {
	Error struct {
		Code string `json:"code"`
	} `json:"error"`
}

func main() {
	var (
		baseURL  = flag.String("url", "http://127.0.0.1:8080", "Server base URL")
		handle   = flag.String("handle", "", "Handle to register (default: generated)")
		password = flag.String("password", "correct horse battery staple", "Password to register with")
		timeout  = flag.Duration("timeout", 7*time.Second, "Per-request timeout")
		verbose  = flag.Bool("v", false, "Verbose output")
	)
	flag.Parse()

	if err := validateBaseURL(*baseURL); err != nil {
		fatalf("invalid -url: %v", err)
	}
	if strings.TrimSpace(*handle) == "" {
		*handle = fmt.Sprintf("smoke_%d", time.Now().UnixNano()%1_000_000_000)
	}

	c := &smokeClient{
		base:    strings.TrimRight(*baseURL, "/"),
		http:    &http.Client{},
		timeout: *timeout,
		verbose: *verbose,
	}
	root := context.Background()

	var reg accountBody
	c.mustStatus(root, http.MethodPost, "/accounts/register", map[string]string{"handle": *handle, "password": *password}, http.StatusCreated, &reg)
	if strings.TrimSpace(reg.Account.ID) == "" {
		fatalf("register: missing account id")
	}

	c.mustError(root, "/accounts/register", map[string]string{"handle": strings.ToUpper(*handle), "password": *password}, http.StatusConflict, "handle_taken")

	var login accountBody
	c.mustStatus(root, http.MethodPost, "/accounts/login", map[string]string{"handle": *handle, "password": *password}, http.StatusOK, &login)
	if login.Account.ID != reg.Account.ID {
		fatalf("login: id mismatch: registered=%s logged_in=%s", reg.Account.ID, login.Account.ID)
	}

	c.mustError(root, "/accounts/login", map[string]string{"handle": *handle, "password": *password + "x"}, http.StatusUnauthorized, "invalid_credentials")
	c.mustError(root, "/accounts/login", map[string]string{"handle": *handle + "_nobody", "password": *password}, http.StatusUnauthorized, "invalid_credentials")

	var got accountBody
	c.mustStatus(root, http.MethodGet, "/accounts/"+url.PathEscape(*handle), nil, http.StatusOK, &got)
	if got.Account.ID != reg.Account.ID {
		fatalf("get: id mismatch: registered=%s got=%s", reg.Account.ID, got.Account.ID)
	}

	c.mustStatus(root, http.MethodPost, "/accounts/delete", map[string]string{"handle": *handle, "password": *password}, http.StatusNoContent, nil)
	c.mustError(root, "/accounts/login", map[string]string{"handle": *handle, "password": *password}, http.StatusUnauthorized, "invalid_credentials")

	fmt.Printf("OK: handle=%s account_id=%s\n", *handle, reg.Account.ID)
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if strings.TrimSpace(u.Host) == "" {
		return errors.New("missing host")
	}
	return nil
}

func (c *smokeClient) do(parent context.Context, method, path string, body any) (int, []byte) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(mustJSON(body))
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		fatalf("%s %s: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		fatalf("%s %s: %v", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxReadBytes))
	if err != nil {
		fatalf("%s %s: read body: %v", method, path, err)
	}
	if c.verbose {
		fmt.Printf("%s %s -> %d %s\n", method, path, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return resp.StatusCode, raw
}

func (c *smokeClient) mustStatus(parent context.Context, method, path string, body any, want int, out any) {
	status, raw := c.do(parent, method, path, body)
	if status != want {
		fatalf("%s %s: status=%d want=%d body=%s", method, path, status, want, strings.TrimSpace(string(raw)))
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal(raw, out); err != nil {
		fatalf("%s %s: unmarshal: %v", method, path, err)
	}
}

func (c *smokeClient) mustError(parent context.Context, path string, body any, wantStatus int, wantCode string) {
	var e errorBody
	c.mustStatus(parent, http.MethodPost, path, body, wantStatus, &e)
	if e.Error.Code != wantCode {
		fatalf("POST %s: code=%q want=%q", path, e.Error.Code, wantCode)
	}
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		fatalf("marshal json: %v", err)
	}
	return b
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "FAIL: "+format+"\n", args...)
	os.Exit(1)
}
