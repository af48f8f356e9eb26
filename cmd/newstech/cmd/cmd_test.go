package cmd

import (
	"bufio"
	"bytes"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newstech/newstech/internal/app"
	"github.com/newstech/newstech/internal/config"
	"github.com/newstech/newstech/internal/db"
	"github.com/newstech/newstech/internal/routes"
)

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		AppEnv:          "development",
		FrontendURL:     "http://frontend.test",
		JWTSecret:       "cli-test-secret-0123456789abcdef",
		RateLimitAuth:   1000,
		RateLimitWindow: time.Minute,
	}

	database, err := db.Open("sqlite", filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)

	a, err := app.Build(cfg, database, app.Providers{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	srv := httptest.NewServer(routes.SetupRoutes(a))
	t.Cleanup(srv.Close)
	return srv
}

func pipedInput(t *testing.T) {
	t.Helper()
	orig := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = orig })
}

func run(t *testing.T, apiURL, sessionDB, stdin string, args ...string) (string, error) {
	t.Helper()

	root := RootCmd()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--api", apiURL, "--session", sessionDB}, args...))

	err := root.Execute()
	return out.String(), err
}

func TestSessionLifecycle(t *testing.T) {
	pipedInput(t)
	srv := newAPIServer(t)
	sessionDB := filepath.Join(t.TempDir(), "client", "session.db")

	out, err := run(t, srv.URL, sessionDB, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	out, err = run(t, srv.URL, sessionDB, "secret123\n",
		"register", "--name", "Ana Silva", "--email", "ana@x.com", "--username", "ana")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome, Ana Silva!")

	out, err = run(t, srv.URL, sessionDB, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, `"username": "ana"`)
	assert.Contains(t, out, `"lastSeen"`)
	assert.NotContains(t, out, "passwordHash")

	out, err = run(t, srv.URL, sessionDB, "", "update", "--name", "Ana S.")
	require.NoError(t, err)
	assert.Contains(t, out, `"fullName": "Ana S."`)

	out, err = run(t, srv.URL, sessionDB, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")

	out, err = run(t, srv.URL, sessionDB, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")

	out, err = run(t, srv.URL, sessionDB, "secret123\n", "login", "ana@x.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as ana")
}

func TestLoginWrongPassword(t *testing.T) {
	pipedInput(t)
	srv := newAPIServer(t)
	sessionDB := filepath.Join(t.TempDir(), "session.db")

	_, err := run(t, srv.URL, sessionDB, "nobody\nwrongpass\n", "login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid username or password")

	out, err := run(t, srv.URL, sessionDB, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Not signed in")
}

func TestUpdateRequiresFlagsAndSession(t *testing.T) {
	pipedInput(t)
	srv := newAPIServer(t)
	sessionDB := filepath.Join(t.TempDir(), "session.db")

	_, err := run(t, srv.URL, sessionDB, "", "update")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to update")

	_, err = run(t, srv.URL, sessionDB, "", "update", "--username", "someone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not signed in")
}

func TestPromptPasswordTerminal(t *testing.T) {
	origTerm, origRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = origTerm, origRead })
	isTerminal = func(int) bool { return true }

	readPassword = func(int) ([]byte, error) { return []byte("s3cretpass"), nil }
	var out bytes.Buffer
	pw, err := promptPassword(bufio.NewReader(strings.NewReader("")), &out)
	require.NoError(t, err)
	assert.Equal(t, "s3cretpass", pw)
	assert.True(t, strings.HasPrefix(out.String(), "Password: "), out.String())

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = promptPassword(bufio.NewReader(strings.NewReader("")), &out)
	assert.Error(t, err)
}

func TestPromptAcceptsFinalLineWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	got, err := prompt(bufio.NewReader(strings.NewReader("lastline")), &out, "Name")
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)
}
