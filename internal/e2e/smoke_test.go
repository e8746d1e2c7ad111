package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	stdout, stderr, err := runDocket(t, binaryPath, home, "doctypes")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "judgment")

	stdout, stderr, err = runDocket(t, binaryPath, home, "session", "status")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "No saved session.")

	stdout, stderr, err = runDocket(t, binaryPath, home,
		"auth", "set", "--user", "clerk77", "--pass", "hunter2")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Credentials stored for clerk77")

	stdout, stderr, err = runDocket(t, binaryPath, home, "auth", "clear")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Stored credentials removed.")

	stdout, stderr, err = runDocket(t, binaryPath, home, "history")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "No batches recorded yet.")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "docket-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/docket")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build docket binary: %s", string(output))
	return binaryPath
}

func runDocket(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
