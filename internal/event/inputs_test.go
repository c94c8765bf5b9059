package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probegate-dev/probegate/internal/contract"
)

func TestParseArgs_FullInputSet(t *testing.T) {
	in, err := ParseArgs([]string{
		"--mode", "restricted",
		"--probe-id", "fs_outside_workspace",
		"--probe-version", "1.0.0",
		"--capability", "cap_fs_read_workspace_tree",
		"--secondary-capability", "cap_net_outbound_http",
		"--secondary-capability", "cap_fs_read_workspace_tree",
		"--command", "cat /etc/hosts",
		"--workspace-root", "/work",
		"--op-category", "fs",
		"--op-verb", "read",
		"--op-target", "/etc/hosts",
		"--op-args", `{"path":"/etc/hosts"}`,
		"--status", "denied",
		"--raw-exit-code", "1",
		"--errno", "EACCES",
		"--stderr-snippet", "cat: /etc/hosts: Permission denied",
	})
	require.NoError(t, err)

	assert.Equal(t, "restricted", in.Mode)
	assert.Equal(t, "fs_outside_workspace", in.ProbeID)
	assert.Equal(t, []string{"cap_net_outbound_http", "cap_fs_read_workspace_tree"}, in.SecondaryCapabilityIDs)
	assert.Equal(t, "denied", in.Status)
	assert.Equal(t, "EACCES", in.Errno)
	require.NotNil(t, in.StderrSnippet)
	assert.Equal(t, "cat: /etc/hosts: Permission denied", *in.StderrSnippet)
	assert.Nil(t, in.StdoutSnippet)
	assert.Nil(t, in.PayloadJSON)
}

func TestParseArgs_EqualsForm(t *testing.T) {
	in, err := ParseArgs([]string{"--mode=warn", "--status=success", "--raw-exit-code=0"})
	require.NoError(t, err)
	assert.Equal(t, "warn", in.Mode)
	assert.Equal(t, "success", in.Status)
	assert.Equal(t, "0", in.RawExitCode)
}

func TestParseArgs_DuplicateFlag(t *testing.T) {
	_, err := ParseArgs([]string{"--mode", "warn", "--mode", "restricted"})
	require.Error(t, err)

	var schemaErr *contract.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, contract.DuplicateFlag, schemaErr.Kind)
	assert.Equal(t, "--mode", schemaErr.Field)
}

func TestParseArgs_SecondaryCapabilityRepeatable(t *testing.T) {
	in, err := ParseArgs([]string{
		"--secondary-capability", "cap_a",
		"--secondary-capability", "cap_b",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"cap_a", "cap_b"}, in.SecondaryCapabilityIDs)
}

func TestParseArgs_UnknownInput(t *testing.T) {
	_, err := ParseArgs([]string{"--surprise", "value"})
	require.Error(t, err)

	var schemaErr *contract.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, contract.InvalidValue, schemaErr.Kind)
}

func TestParseArgs_MissingValue(t *testing.T) {
	_, err := ParseArgs([]string{"--mode"})
	require.Error(t, err)

	var schemaErr *contract.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "--mode", schemaErr.Field)
}

func TestParseArgs_PartialInputsOnError(t *testing.T) {
	in, err := ParseArgs([]string{"--probe-id", "fs_read", "--capability", "cap_a", "--capability", "cap_b"})
	require.Error(t, err)

	// Identity parsed before the failure is still available.
	assert.Equal(t, "fs_read", in.ProbeID)
}

func TestParseArgs_EmptyValueDistinctFromAbsent(t *testing.T) {
	in, err := ParseArgs([]string{"--stdout-snippet", ""})
	require.NoError(t, err)
	require.NotNil(t, in.StdoutSnippet)
	assert.Equal(t, "", *in.StdoutSnippet)
}
