package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// clearEnv keeps FOODSHEET_* variables from the developer's shell out of
// the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"FOODSHEET_DB", "FOODSHEET_LISTEN", "FOODSHEET_REDIS_URL", "FOODSHEET_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

// executeCommand runs the root command and returns what it wrote to stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	clearEnv(t)

	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func testDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "test.db")
}

func writeMenuDir(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "menu.cue"), []byte(src), 0644))
	return dir
}

type envelope[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
}

func decodeEnvelope[T any](t *testing.T, out string) envelope[T] {
	t.Helper()
	var resp envelope[T]
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

const twoProductMenu = `
package menu

product: "P001": {
	name:      "ผัดไทย"
	price:     60
	category:  "main-dish"
	brand:     "Baan Thai"
	image_url: "https://img.example/padthai.jpg"
}

product: "B002": {
	name:      "ชาเย็น"
	price:     25.5
	category:  "เครื่องดื่ม"
	brand:     "Baan Thai"
	image_url: "https://img.example/thaitea.jpg"
	status:    "inactive"
}
`
