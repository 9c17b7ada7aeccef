package main

import (
	"bytes"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, strings.NewReader(stdin), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestEncodeThenValidate(t *testing.T) {
	code, out, _ := runCLI(t, "hunter2\n", "encode")
	require.Equal(t, exitOK, code)

	digest := strings.TrimSpace(out)
	require.Len(t, digest, 128)

	code, out, _ = runCLI(t, "hunter2\n", "validate", digest)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "ok\n", out)

	code, out, _ = runCLI(t, "hunter3\n", "validate", digest)
	assert.Equal(t, exitMismatch, code)
	assert.Equal(t, "mismatch\n", out)
}

func TestValidate_PlainSHA512IsDepthZero(t *testing.T) {
	sum := sha512.Sum512([]byte("hunter2"))
	code, out, _ := runCLI(t, "hunter2", "validate", hex.EncodeToString(sum[:]))
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "ok\n", out)
}

func TestValidate_EmptyPassword(t *testing.T) {
	sum := sha512.Sum512(nil)
	code, _, _ := runCLI(t, "\n", "validate", hex.EncodeToString(sum[:]))
	assert.Equal(t, exitOK, code)
}

func TestValidate_MalformedDigest(t *testing.T) {
	for _, d := range []string{"", "zz", strings.Repeat("A", 128), strings.Repeat("0", 127)} {
		code, out, errOut := runCLI(t, "hunter2\n", "validate", d)
		assert.Equal(t, exitUsage, code, "digest %q", d)
		assert.Empty(t, out)
		assert.Contains(t, errOut, "invalid digest")
	}
}

func TestUsageErrors(t *testing.T) {
	cases := [][]string{
		nil,
		{"frobnicate"},
		{"encode", "extra"},
		{"validate"},
	}
	for _, args := range cases {
		code, _, errOut := runCLI(t, "", args...)
		assert.Equal(t, exitUsage, code, "args %v", args)
		assert.Contains(t, errOut, "usage:")
	}

	code, out, _ := runCLI(t, "", "help")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, out, "max iterations 100")
}

func TestPromptPassword_Terminal(t *testing.T) {
	oldRead, oldTerm := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = oldRead, oldTerm })

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("s3cret"), nil }

	var prompt bytes.Buffer
	pw, err := promptPassword(os.Stdin, &prompt)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", string(pw))
	assert.Equal(t, "Password: \n", prompt.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("tty gone") }
	_, err = promptPassword(os.Stdin, &prompt)
	require.Error(t, err)
}

func TestPromptPassword_StripsLineEnding(t *testing.T) {
	pw, err := promptPassword(strings.NewReader("abc\r\nignored\n"), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, "abc", string(pw))
}
