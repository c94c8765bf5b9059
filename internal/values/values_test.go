package values

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcome_Validate(t *testing.T) {
	for _, o := range []Outcome{OutcomeSuccess, OutcomeDenied, OutcomePartial, OutcomeError} {
		assert.NoError(t, o.Validate())
	}

	assert.Error(t, Outcome("passed").Validate())
	assert.Error(t, Outcome("").Validate())
}

func TestOutcome_IsDenial(t *testing.T) {
	assert.True(t, OutcomeDenied.IsDenial())
	assert.False(t, OutcomeSuccess.IsDenial())
	assert.False(t, OutcomeError.IsDenial())
}

func TestStatus_Validate(t *testing.T) {
	assert.NoError(t, StatusPass.Validate())
	assert.NoError(t, StatusFail.Validate())
	assert.Error(t, Status("maybe").Validate())
}

func TestStatus_IsFailure(t *testing.T) {
	assert.True(t, StatusFail.IsFailure())
	assert.False(t, StatusPass.IsFailure())
}

func TestNewCapabilityID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "cap_fs_read_workspace_tree", false},
		{"valid with dots and dashes", "cap.net-outbound_v1", false},
		{"trimmed", "  cap_env_read  ", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"contains space", "cap fs read", true},
		{"contains slash", "cap/fs", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := NewCapabilityID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.True(t, id.IsEmpty())
			} else {
				require.NoError(t, err)
				assert.False(t, id.IsEmpty())
			}
		})
	}
}

func TestCapabilityID_JSONRoundTrip(t *testing.T) {
	id := MustNewCapabilityID("cap_proc_spawn")

	data, err := json.Marshal(id)
	require.NoError(t, err)
	assert.Equal(t, `"cap_proc_spawn"`, string(data))

	var decoded CapabilityID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equals(decoded))
}

func TestNewProbeName(t *testing.T) {
	name, err := NewProbeName("fs_outside_workspace")
	require.NoError(t, err)
	assert.Equal(t, "fs_outside_workspace", name.String())

	_, err = NewProbeName("")
	assert.Error(t, err)

	_, err = NewProbeName("probes/fs_read")
	assert.Error(t, err)
}

func TestNewMode(t *testing.T) {
	mode, err := NewMode("restricted")
	require.NoError(t, err)
	assert.Equal(t, "restricted", mode.String())

	_, err = NewMode("")
	assert.Error(t, err)

	_, err = NewMode("Restricted Mode")
	assert.Error(t, err)
}

func TestGateRunID_Unique(t *testing.T) {
	a := NewGateRunID()
	b := NewGateRunID()

	assert.False(t, a.IsZero())
	assert.NotEqual(t, a.String(), b.String())
}

func TestParseGateRunID(t *testing.T) {
	id := NewGateRunID()

	parsed, err := ParseGateRunID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id.String(), parsed.String())

	_, err = ParseGateRunID("not-a-uuid")
	assert.Error(t, err)
}
