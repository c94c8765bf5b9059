// Package lint inspects probe source text for the structural markers
// the authoring contract requires. The linter never executes a probe;
// every check runs on the source text (plus a no-execution dry parse)
// and all violations are reported in a single pass.
package lint

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/probegate-dev/probegate/internal/contract"
)

// InterpreterMarker is the exact required first line of every probe.
const InterpreterMarker = "#!/usr/bin/env bash"

// Check identifiers, stable across releases so CI can key on them.
const (
	CheckShebang    = "shebang"
	CheckStrictMode = "strict-mode"
	CheckSyntax     = "syntax"
	CheckProbeName  = "probe-name"
	CheckCapability = "capability"
)

var (
	nameDeclPattern = regexp.MustCompile(`^PROBE_NAME=["']?([^"'\s]*)["']?\s*$`)
	capDeclPattern  = regexp.MustCompile(`^PROBE_CAPABILITY=["']?([^"'\s]*)["']?\s*$`)
)

// Declaration holds the facts extracted statically from a probe.
// Recomputed per lint pass, never persisted.
type Declaration struct {
	DerivedID          string // probe id derived from the file base name
	DeclaredName       string // PROBE_NAME value
	DeclaredCapability string // PROBE_CAPABILITY value
}

// Linter runs the static contract checks.
type Linter struct {
	syntax SyntaxChecker
}

// New creates a linter with the default shell dry-parse checker.
func New() *Linter {
	return NewWithSyntaxChecker(NewShellSyntaxChecker())
}

// NewWithSyntaxChecker creates a linter with a custom syntax checker.
func NewWithSyntaxChecker(syntax SyntaxChecker) *Linter {
	return &Linter{syntax: syntax}
}

// Lint checks one probe file. The returned verdict carries every
// violation found; the error is reserved for I/O failures reading the
// source, which are not contract violations.
func (l *Linter) Lint(ctx context.Context, path string) (Declaration, *contract.Verdict, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return Declaration{}, nil, contract.NewResourceError("probe", fmt.Sprintf("failed to read %s", path), err)
	}
	decl := l.LintSource(ctx, path, string(source))
	return decl, l.verdictFor(ctx, path, string(source), decl), nil
}

// LintSource extracts the static declaration from source text.
func (l *Linter) LintSource(_ context.Context, path, source string) Declaration {
	decl := Declaration{DerivedID: filepath.Base(path)}
	for _, line := range strings.Split(source, "\n") {
		if m := nameDeclPattern.FindStringSubmatch(line); m != nil && decl.DeclaredName == "" {
			decl.DeclaredName = m[1]
		}
		if m := capDeclPattern.FindStringSubmatch(line); m != nil && decl.DeclaredCapability == "" {
			decl.DeclaredCapability = m[1]
		}
	}
	return decl
}

// verdictFor runs all checks, accumulating every violation in order.
func (l *Linter) verdictFor(ctx context.Context, path, source string, decl Declaration) *contract.Verdict {
	verdict := contract.NewVerdict()
	lines := strings.Split(source, "\n")

	if len(lines) == 0 || lines[0] != InterpreterMarker {
		verdict.Add(CheckShebang, fmt.Sprintf("first line must be exactly %q", InterpreterMarker))
	}

	if !hasStrictModeDirective(lines) {
		verdict.Add(CheckStrictMode, "missing a top-level strict-execution directive (set -euo pipefail)")
	}

	if err := l.syntax.Check(ctx, path); err != nil {
		verdict.Add(CheckSyntax, err.Error())
	}

	switch {
	case decl.DeclaredName == "":
		verdict.Add(CheckProbeName, "missing PROBE_NAME declaration")
	case decl.DeclaredName != decl.DerivedID:
		verdict.Add(CheckProbeName,
			fmt.Sprintf("declared name %q does not match file name %q", decl.DeclaredName, decl.DerivedID))
	}

	if decl.DeclaredCapability == "" {
		verdict.Add(CheckCapability, "missing or empty PROBE_CAPABILITY declaration")
	}

	return verdict
}

// hasStrictModeDirective looks for one top-level set directive enabling
// errexit, nounset, and pipefail. Split forms like "set -eu -o pipefail"
// count; directives buried in functions or conditionals do not, because
// only a leading-column set line is considered top level.
func hasStrictModeDirective(lines []string) bool {
	for _, line := range lines {
		if !strings.HasPrefix(line, "set ") {
			continue
		}
		if directiveCovers(line, "e") && directiveCovers(line, "u") && coversPipefail(line) {
			return true
		}
	}
	return false
}

func directiveCovers(line, flag string) bool {
	for _, tok := range strings.Fields(line)[1:] {
		if strings.HasPrefix(tok, "-") && strings.Contains(tok[1:], flag) {
			return true
		}
	}
	// Long form: set -o errexit / set -o nounset
	long := map[string]string{"e": "errexit", "u": "nounset"}[flag]
	return long != "" && optionArg(line, long)
}

// coversPipefail matches both "set -o pipefail" and the folded
// "set -euo pipefail", where the o option's argument follows the
// combined flag token.
func coversPipefail(line string) bool {
	toks := strings.Fields(line)
	for i := 1; i < len(toks)-1; i++ {
		if strings.HasPrefix(toks[i], "-") && strings.HasSuffix(toks[i], "o") && toks[i+1] == "pipefail" {
			return true
		}
	}
	return false
}

// optionArg reports whether "-o <name>" appears in the directive.
func optionArg(line, name string) bool {
	toks := strings.Fields(line)
	for i, tok := range toks {
		if tok == "-o" && i+1 < len(toks) && toks[i+1] == name {
			return true
		}
	}
	return false
}
