package fixtures

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// DeploymentPath returns the path of a fixture deployment artifact.
func DeploymentPath(t *testing.T, filename string) string {
	t.Helper()
	path := filepath.Join(fixturesDir(), "deployment", filename)
	_, err := os.Stat(path)
	require.NoError(t, err, "missing fixture artifact: %s", filename)
	return path
}

// LoadCallResults loads a fixture mapping contract method names to the
// hex-encoded eth_call result the node returns for them.
func LoadCallResults(t *testing.T, filename string) map[string]string {
	t.Helper()
	path := filepath.Join(fixturesDir(), "rpc", filename)
	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to load fixture RPC results: %s", filename)

	var results map[string]string
	require.NoError(t, json.Unmarshal(data, &results))
	return results
}
