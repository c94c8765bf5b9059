package lint

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/probegate-dev/probegate/internal/contract"
)

func writeProbe(t *testing.T, name, source string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o755))
	return path
}

const goodProbe = `#!/usr/bin/env bash
set -euo pipefail

PROBE_NAME="fs_outside_workspace"
PROBE_CAPABILITY="cap_fs_read_workspace_tree"

emit_boundary_event --status denied --raw-exit-code 1
`

func lintChecks(t *testing.T, v *contract.Verdict) []string {
	t.Helper()
	checks := make([]string, 0, len(v.Violations))
	for _, viol := range v.Violations {
		checks = append(checks, viol.Check)
	}
	return checks
}

func TestLint_Pass(t *testing.T) {
	path := writeProbe(t, "fs_outside_workspace", goodProbe)
	linter := NewWithSyntaxChecker(NoopSyntaxChecker{})

	decl, verdict, err := linter.Lint(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, verdict.Passed(), verdict.Summary())

	assert.Equal(t, "fs_outside_workspace", decl.DerivedID)
	assert.Equal(t, "fs_outside_workspace", decl.DeclaredName)
	assert.Equal(t, "cap_fs_read_workspace_tree", decl.DeclaredCapability)
}

func TestLint_MissingShebang(t *testing.T) {
	source := `# not a shebang
set -euo pipefail
PROBE_NAME="p"
PROBE_CAPABILITY="cap_x"
`
	path := writeProbe(t, "p", source)
	linter := NewWithSyntaxChecker(NoopSyntaxChecker{})

	_, verdict, err := linter.Lint(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{CheckShebang}, lintChecks(t, verdict))
}

func TestLint_MissingStrictModeIsExactlyOneViolation(t *testing.T) {
	source := `#!/usr/bin/env bash
PROBE_NAME="p"
PROBE_CAPABILITY="cap_x"
`
	path := writeProbe(t, "p", source)
	linter := NewWithSyntaxChecker(NoopSyntaxChecker{})

	_, verdict, err := linter.Lint(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{CheckStrictMode}, lintChecks(t, verdict))
}

func TestLint_NameMismatchIsExactlyOneViolation(t *testing.T) {
	source := `#!/usr/bin/env bash
set -euo pipefail
PROBE_NAME="something_else"
PROBE_CAPABILITY="cap_x"
`
	path := writeProbe(t, "fs_outside_workspace", source)
	linter := NewWithSyntaxChecker(NoopSyntaxChecker{})

	_, verdict, err := linter.Lint(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, []string{CheckProbeName}, lintChecks(t, verdict))
	assert.Contains(t, verdict.Violations[0].Message, "something_else")
}

func TestLint_AccumulatesAllViolations(t *testing.T) {
	source := `echo hello
`
	path := writeProbe(t, "p", source)
	linter := NewWithSyntaxChecker(NoopSyntaxChecker{})

	_, verdict, err := linter.Lint(context.Background(), path)
	require.NoError(t, err)

	// One pass reports the full defect list, in check order.
	assert.Equal(t, []string{CheckShebang, CheckStrictMode, CheckProbeName, CheckCapability}, lintChecks(t, verdict))
}

func TestLint_EmptyCapability(t *testing.T) {
	source := `#!/usr/bin/env bash
set -euo pipefail
PROBE_NAME="p"
PROBE_CAPABILITY=""
`
	path := writeProbe(t, "p", source)
	linter := NewWithSyntaxChecker(NoopSyntaxChecker{})

	_, verdict, err := linter.Lint(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{CheckCapability}, lintChecks(t, verdict))
}

func TestLint_MissingFile(t *testing.T) {
	linter := NewWithSyntaxChecker(NoopSyntaxChecker{})

	_, _, err := linter.Lint(context.Background(), filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)

	var resErr *contract.ResourceError
	assert.ErrorAs(t, err, &resErr)
}

func TestHasStrictModeDirective(t *testing.T) {
	tests := []struct {
		name string
		line string
		want bool
	}{
		{"combined", "set -euo pipefail", true},
		{"split short flags", "set -eu -o pipefail", true},
		{"fully split", "set -e -u -o pipefail", true},
		{"long forms", "set -o errexit -o nounset -o pipefail", true},
		{"missing pipefail", "set -eu", false},
		{"missing nounset", "set -e -o pipefail", false},
		{"indented is not top level", "  set -euo pipefail", false},
		{"unrelated set", "set -x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasStrictModeDirective([]string{tt.line}))
		})
	}
}

func TestShellSyntaxChecker(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	checker := NewShellSyntaxChecker()

	good := writeProbe(t, "ok", "#!/usr/bin/env bash\necho hi\n")
	assert.NoError(t, checker.Check(context.Background(), good))

	bad := writeProbe(t, "broken", "#!/usr/bin/env bash\nif true; then\n")
	err := checker.Check(context.Background(), bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not parse")
}

func TestLint_SyntaxViolationReported(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}

	source := `#!/usr/bin/env bash
set -euo pipefail
PROBE_NAME="p"
PROBE_CAPABILITY="cap_x"
while true; do
`
	path := writeProbe(t, "p", source)

	_, verdict, err := New().Lint(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{CheckSyntax}, lintChecks(t, verdict))
}
