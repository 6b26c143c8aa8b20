//go:build windows

package docker

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/xames3/conman/internal/model"
)

// handoff emulates process replacement on Windows, which has no
// execve: the docker client runs as a child with the standard streams
// attached, and ConMan exits with the child's status the moment it
// finishes. Like the Unix version, a nil return never happens; only
// failures to launch come back to the caller.
func handoff(argv []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return model.WrapCLIError(
			model.ExitFailure,
			fmt.Sprintf("%s not found in PATH", argv[0]),
			err,
		)
	}

	cmd := exec.Command(path, argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		return model.WrapCLIError(
			model.ExitFailure,
			fmt.Sprintf("failed to execute %q", path),
			err,
		)
	}

	os.Exit(0)
	return nil
}
