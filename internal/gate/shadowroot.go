package gate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/probegate-dev/probegate/internal/contract"
	"github.com/probegate-dev/probegate/internal/values"
)

// ShadowRoot is the ephemeral directory tree a probe is re-executed in.
// It holds a copy of the target probe, symlinks to every other harness
// helper, and an instrumented emitter shim in place of the real one.
// Each gate run allocates its own uniquely named root, so concurrent
// runs never share mutable state.
type ShadowRoot struct {
	RunID     values.GateRunID
	Dir       string // root of the ephemeral tree
	ProbePath string // copied probe inside the tree
	StateDir  string // private state area for the recorder

	closeOnce sync.Once
	closeErr  error
}

// emitterShim forwards the probe's emitter call into this binary's
// emit subcommand; record mode is selected by the environment the
// executor sets.
const emitterShim = `#!/usr/bin/env bash
exec "${PROBEGATE_SELF:?probegate shim invoked outside a gate run}" emit "$@"
`

// BuildShadowRoot assembles the tree. harnessDir holds the probe's
// helpers including the mode-runner and the production emitter named
// emitterName; the emitter alone is replaced by the instrumented shim.
func BuildShadowRoot(runID values.GateRunID, harnessDir, probePath, emitterName string) (*ShadowRoot, error) {
	base, err := os.MkdirTemp("", "probegate-"+runID.String()+"-")
	if err != nil {
		return nil, contract.NewResourceError("shadow-root", "failed to allocate shadow root", err)
	}

	root := &ShadowRoot{
		RunID:    runID,
		Dir:      base,
		StateDir: filepath.Join(base, "state"),
	}
	if err := root.populate(harnessDir, probePath, emitterName); err != nil {
		root.Close()
		return nil, err
	}
	return root, nil
}

func (s *ShadowRoot) populate(harnessDir, probePath, emitterName string) error {
	treeDir := filepath.Join(s.Dir, "root")
	for _, dir := range []string{treeDir, s.StateDir} {
		if err := os.Mkdir(dir, 0o755); err != nil {
			return contract.NewResourceError("shadow-root", "failed to create shadow subtree", err)
		}
	}

	// The probe is copied, not linked: the tree must stay coherent even
	// if the author edits the probe while a gate run is in flight.
	probeBase := filepath.Base(probePath)
	s.ProbePath = filepath.Join(treeDir, probeBase)
	if err := copyFile(probePath, s.ProbePath, 0o755); err != nil {
		return contract.NewResourceError("shadow-root", fmt.Sprintf("failed to copy probe %s", probePath), err)
	}

	absHarness, err := filepath.Abs(harnessDir)
	if err != nil {
		return contract.NewResourceError("shadow-root", "failed to resolve harness directory", err)
	}
	entries, err := os.ReadDir(absHarness)
	if err != nil {
		return contract.NewResourceError("shadow-root", fmt.Sprintf("failed to read harness directory %s", harnessDir), err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if name == emitterName || name == probeBase {
			continue
		}
		if err := os.Symlink(filepath.Join(absHarness, name), filepath.Join(treeDir, name)); err != nil {
			return contract.NewResourceError("shadow-root", fmt.Sprintf("failed to link helper %s", name), err)
		}
	}

	shimPath := filepath.Join(treeDir, emitterName)
	if err := os.WriteFile(shimPath, []byte(emitterShim), 0o755); err != nil {
		return contract.NewResourceError("shadow-root", "failed to install emitter shim", err)
	}
	return nil
}

// TreeDir returns the directory the probe executes in.
func (s *ShadowRoot) TreeDir() string {
	return filepath.Join(s.Dir, "root")
}

// HelperPath returns the in-tree path of a harness helper.
func (s *ShadowRoot) HelperPath(name string) (string, error) {
	path := filepath.Join(s.TreeDir(), name)
	if _, err := os.Stat(path); err != nil {
		return "", contract.NewResourceError("shadow-root", fmt.Sprintf("helper %s is missing from the shadow root", name), err)
	}
	return path, nil
}

// Close removes the shadow root and all scratch state. It is
// unconditional and idempotent: safe to call on every exit path,
// including after a forcible kill or an external cancellation.
func (s *ShadowRoot) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = os.RemoveAll(s.Dir)
	})
	return s.closeErr
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
