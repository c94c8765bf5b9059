package gate

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probegate-dev/probegate/internal/contract"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("#!/usr/bin/env bash\n"+body), 0o755))
	return path
}

func TestExecutor_CapturesExitAndOutput(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	script := writeScript(t, dir, "probe", "echo out\necho err >&2\nexit 3\n")

	result, err := NewExecutor().Run(context.Background(), RunSpec{
		Entrypoint: script,
		Dir:        dir,
		Timeout:    10 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "out\n", result.Stdout)
	assert.Equal(t, "err\n", result.Stderr)
	assert.False(t, result.TimedOut)
}

func TestExecutor_EnvironmentPassthrough(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	script := writeScript(t, dir, "probe", `echo "$PROBE_MODE"`+"\n")

	result, err := NewExecutor().Run(context.Background(), RunSpec{
		Entrypoint: script,
		Dir:        dir,
		Env:        []string{"PROBE_MODE=restricted"},
		Timeout:    10 * time.Second,
	})
	require.NoError(t, err)
	assert.Equal(t, "restricted\n", result.Stdout)
}

func TestExecutor_TimeoutKillsTree(t *testing.T) {
	requireShell(t)
	dir := t.TempDir()
	// The child forks a grandchild; the budget must take both down.
	script := writeScript(t, dir, "probe", "sleep 30 &\nsleep 30\n")

	start := time.Now()
	result, err := NewExecutor().Run(context.Background(), RunSpec{
		Entrypoint: script,
		Dir:        dir,
		Timeout:    200 * time.Millisecond,
	})

	require.Error(t, err)
	var timeout *contract.TimeoutError
	require.True(t, errors.As(err, &timeout))
	assert.True(t, result.TimedOut)
	assert.Less(t, time.Since(start), 10*time.Second, "executor must not wait out the probe's sleep")
}

func TestExecutor_MissingEntrypoint(t *testing.T) {
	_, err := NewExecutor().Run(context.Background(), RunSpec{
		Entrypoint: filepath.Join(t.TempDir(), "absent"),
		Timeout:    time.Second,
	})
	require.Error(t, err)

	var resErr *contract.ResourceError
	assert.ErrorAs(t, err, &resErr)
}
