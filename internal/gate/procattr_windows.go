//go:build windows

package gate

import "os/exec"

func setProcessGroup(_ *exec.Cmd) {}

func killTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
