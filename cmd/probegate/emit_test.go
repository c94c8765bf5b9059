package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probegate-dev/probegate/internal/gate"
	"github.com/probegate-dev/probegate/internal/values"
)

func emitterArgs() []string {
	return []string{
		"--mode", "restricted",
		"--probe-id", "fs_outside_workspace",
		"--probe-version", "1.0.0",
		"--capability", "cap_fs_read_workspace_tree",
		"--command", "cat /etc/passwd",
		"--workspace-root", "/work",
		"--op-category", "fs",
		"--op-verb", "read",
		"--op-target", "/etc/passwd",
		"--status", "denied",
		"--raw-exit-code", "1",
		"--stdout-snippet", "",
		"--stderr-snippet", "Permission denied",
	}
}

func TestRunEmitRecord_Pass(t *testing.T) {
	recordDir := t.TempDir()
	t.Setenv(gate.CatalogEnv, writeTestCatalog(t))

	require.NoError(t, runEmitRecord(recordDir, emitterArgs()))

	invocations, err := gate.NewRecorder(recordDir).Invocations()
	require.NoError(t, err)
	require.Len(t, invocations, 1)

	inv := invocations[0]
	assert.Equal(t, values.StatusPass, inv.Status)
	assert.Empty(t, inv.FirstViolation)
	assert.Equal(t, "fs_outside_workspace", inv.ProbeID)
	assert.Equal(t, "cap_fs_read_workspace_tree", inv.PrimaryCapabilityID)
	assert.Equal(t, emitterArgs(), inv.Args)
}

func TestRunEmitRecord_BuildFailureRecordsFail(t *testing.T) {
	recordDir := t.TempDir()
	t.Setenv(gate.CatalogEnv, writeTestCatalog(t))

	// Missing --status: builds must fail, but record mode still exits clean.
	args := emitterArgs()[:18]
	require.NoError(t, runEmitRecord(recordDir, args))

	invocations, err := gate.NewRecorder(recordDir).Invocations()
	require.NoError(t, err)
	require.Len(t, invocations, 1)

	inv := invocations[0]
	assert.Equal(t, values.StatusFail, inv.Status)
	assert.Contains(t, inv.FirstViolation, "--status")
	assert.Equal(t, "fs_outside_workspace", inv.ProbeID)
}

func TestRunEmitRecord_UnknownCapability(t *testing.T) {
	recordDir := t.TempDir()
	t.Setenv(gate.CatalogEnv, writeTestCatalog(t))

	args := emitterArgs()
	args[7] = "cap_not_in_catalog"
	require.NoError(t, runEmitRecord(recordDir, args))

	invocations, err := gate.NewRecorder(recordDir).Invocations()
	require.NoError(t, err)
	require.Len(t, invocations, 1)
	assert.Equal(t, values.StatusFail, invocations[0].Status)
	assert.Contains(t, invocations[0].FirstViolation, "cap_not_in_catalog")
}

func TestRunEmitRecord_EachCallRecordedSeparately(t *testing.T) {
	recordDir := t.TempDir()
	t.Setenv(gate.CatalogEnv, writeTestCatalog(t))

	require.NoError(t, runEmitRecord(recordDir, emitterArgs()))
	require.NoError(t, runEmitRecord(recordDir, emitterArgs()))

	invocations, err := gate.NewRecorder(recordDir).Invocations()
	require.NoError(t, err)
	assert.Len(t, invocations, 2)
}

func TestRunEmitProduction_MissingCatalogFails(t *testing.T) {
	t.Setenv(gate.CatalogEnv, "/nonexistent/catalog.yaml")

	err := runEmitProduction(emitterArgs())
	require.Error(t, err)
}
