package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for one writer and concurrent readers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

var listeningRe = regexp.MustCompile(`Listening on (http://\S+)`)

// startServe runs "foodsheet serve" until the test ends and returns the
// base URL.
func startServe(t *testing.T, args ...string) string {
	t.Helper()
	clearEnv(t)

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "foodsheet.yaml")
	cfg := "images:\n  dir: " + filepath.Join(dir, "images") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}

	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--config", cfgPath, "serve", "--listen", "127.0.0.1:0"}, args...))

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err, "graceful shutdown")
		case <-time.After(10 * time.Second):
			t.Error("server did not stop")
		}
	})

	var base string
	require.Eventually(t, func() bool {
		m := listeningRe.FindStringSubmatch(out.String())
		if m == nil {
			return false
		}
		base = m[1]
		return true
	}, 5*time.Second, 10*time.Millisecond, "server never reported its address")
	return base
}

func getHealth(t *testing.T, base string) map[string]string {
	t.Helper()
	resp, err := http.Get(base + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestServe_HealthAndShutdown(t *testing.T) {
	base := startServe(t, "--db", testDB(t))

	assert.Equal(t, map[string]string{"status": "ok", "store": "connected"}, getHealth(t, base))

	resp, err := http.Post(base+"/sessions", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

func TestServe_NotConnectedMode(t *testing.T) {
	db := filepath.Join(t.TempDir(), "missing", "test.db")
	base := startServe(t, "--db", db)

	assert.Equal(t, "not_connected", getHealth(t, base)["store"])

	resp, err := http.Get(base + "/products")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestServe_InvalidConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "foodsheet.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("images:\n  backend: ftp\n"), 0644))

	_, err := executeCommand(t, "--config", cfgPath, "serve")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "ftp")
}
