package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
	assert.Contains(t, info.Full(), info.Version)
}

func TestCheckEngineConstraint(t *testing.T) {
	orig := Version
	defer func() { Version = orig }()

	Version = "0.5.0"
	assert.NoError(t, CheckEngineConstraint(""))
	assert.NoError(t, CheckEngineConstraint(">= 0.1.0"))
	assert.Error(t, CheckEngineConstraint(">= 1.0.0"))
	assert.Error(t, CheckEngineConstraint("not a constraint"))

	// Dev builds satisfy everything.
	Version = "dev"
	assert.NoError(t, CheckEngineConstraint(">= 99.0.0"))
}
