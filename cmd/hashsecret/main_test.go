package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/server/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTerminal(t *testing.T, tty bool, secret string) {
	t.Helper()
	origRead, origTTY := readPassword, isTerminal
	t.Cleanup(func() { readPassword, isTerminal = origRead, origTTY })

	isTerminal = func(int) bool { return tty }
	readPassword = func(int) ([]byte, error) { return []byte(secret), nil }
}

func verify(t *testing.T, secret, hash string) {
	t.Helper()
	h, err := credentials.NewArgon2(credentials.DefaultParams)
	require.NoError(t, err)
	ok, err := h.Verify(secret, hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRun_FromPipe(t *testing.T) {
	stubTerminal(t, false, "")

	var out, prompt bytes.Buffer
	require.NoError(t, run(strings.NewReader("s3cret\n"), &out, &prompt, 0))

	hash := strings.TrimSpace(out.String())
	assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	assert.Empty(t, prompt.String())
	verify(t, "s3cret", hash)
}

func TestRun_FromTerminal(t *testing.T) {
	stubTerminal(t, true, "typed")

	var out, prompt bytes.Buffer
	require.NoError(t, run(strings.NewReader(""), &out, &prompt, 0))

	assert.Contains(t, prompt.String(), "Secret: ")
	verify(t, "typed", strings.TrimSpace(out.String()))
}

func TestRun_EmptySecret(t *testing.T) {
	stubTerminal(t, false, "")

	var out bytes.Buffer
	err := run(strings.NewReader("\n"), &out, &bytes.Buffer{}, 0)
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestWipe(t *testing.T) {
	b := []byte("secret")
	wipe(b)
	assert.Equal(t, make([]byte, 6), b)
}
