//go:build !windows

package docker

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"

	"github.com/xames3/conman/internal/model"
)

// handoff replaces the current process with the docker client via
// execve, leaving the user's terminal attached directly to the
// container. Nothing after a successful call executes; the process
// exit status from here on is docker's, not ConMan's.
func handoff(argv []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return model.WrapCLIError(
			model.ExitFailure,
			fmt.Sprintf("%s not found in PATH", argv[0]),
			err,
		)
	}
	if err := syscall.Exec(path, argv, os.Environ()); err != nil {
		return model.WrapCLIError(
			model.ExitFailure,
			fmt.Sprintf("failed to execute %q", strings.Join(argv, " ")),
			err,
		)
	}
	return nil
}
