package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// modelSpecs is the shared spec directory used across packages.
const modelSpecs = "../../testdata/specs"

// runCLI executes the root command with args and returns stdout, stderr
// and the command error.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// decodeResponse parses a single JSON CLIResponse, decoding Data into data
// when non-nil.
func decodeResponse(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), "output: %s", out)
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data), "data: %s", raw.Data)
	}
	return raw.CLIResponse
}

// writeFile writes content under dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// tempDB returns a path for a fresh history database.
func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history.db")
}
