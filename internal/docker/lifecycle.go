// lifecycle.go implements the interactive run path: making sure the
// Docker daemon is up, deciding between reattaching to an existing
// container and spawning a new one, and handing the terminal over to
// the docker CLI.
package docker

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xames3/conman/internal/model"
)

const (
	// daemonPollAttempts and daemonPollInterval bound the wait for a
	// freshly started daemon: ten rechecks, two seconds apart.
	daemonPollAttempts = 10
	daemonPollInterval = 2 * time.Second
)

// Controller orchestrates the run command. All interaction with the
// outside world goes through the function fields, so tests can swap in
// canned process results without a Docker daemon on the machine.
type Controller struct {
	log *logrus.Logger

	// run executes a command and reports only its exit status; output
	// is discarded. Used for daemon probes and the daemon starter.
	run func(ctx context.Context, argv []string) error

	// capture executes a command and returns its stdout.
	capture func(ctx context.Context, argv []string) ([]byte, error)

	// exec hands the process over to the given command. On success it
	// never returns.
	exec func(argv []string) error

	sleep func(d time.Duration)
}

// NewController returns a Controller wired to the real system: child
// processes via os/exec and process replacement via the platform
// handoff.
func NewController(log *logrus.Logger) *Controller {
	return &Controller{
		log:     log,
		run:     runCommand,
		capture: captureCommand,
		exec:    handoff,
		sleep:   time.Sleep,
	}
}

// Launch carries out the run command with the given options. It checks
// the daemon, picks between docker start and docker run, and replaces
// the current process with the resulting command. An error return
// therefore means the handoff never happened.
func (c *Controller) Launch(ctx context.Context, opts model.RunOptions) error {
	// The image is required up front, before any external command, so
	// a bad invocation fails fast without ever touching Docker.
	if opts.Image == "" {
		return model.NewCLIError(model.ExitFailure, "ConMan `run` requires --image argument")
	}

	c.EnsureDaemon(ctx)

	var argv []string
	switch {
	case c.ContainerExists(ctx, opts.Name):
		c.log.Infof("Container: %s already exists! Starting now...", opts.Name)
		argv = startArgs(opts.Name)
	case opts.Ephemeral():
		c.log.Info("Spawning a temporary container...")
		argv = runArgs(opts)
	default:
		c.log.Infof("Spawning new container: %s...", opts.Name)
		argv = runArgs(opts)
	}

	c.log.Debugf("Executing docker command: %s", strings.Join(argv, " "))
	return c.exec(argv)
}

// EnsureDaemon checks the Docker daemon and, when it is down, starts
// it in the background and waits a bounded amount of time for it to
// come up. The wait is best effort: when the daemon still is not
// answering afterwards, the run proceeds and the docker command itself
// surfaces the failure to the user.
func (c *Controller) EnsureDaemon(ctx context.Context) {
	c.log.Info("Checking if the docker daemon is running...")
	if c.DaemonRunning(ctx) {
		c.log.Info("Docker daemon is running...")
		return
	}

	c.log.Warn("Docker daemon is not running. Starting Docker...")
	if err := c.run(ctx, daemonStartCommand()); err != nil {
		c.log.Debugf("Docker start command failed: %v", err)
	}

	total := daemonPollAttempts * int(daemonPollInterval/time.Second)
	c.log.Infof("Docker daemon is starting in the background, expected start time %d secs", total)
	for attempt := 0; attempt < daemonPollAttempts; attempt++ {
		c.sleep(daemonPollInterval)
		if c.DaemonRunning(ctx) {
			c.log.Info("Docker daemon is running...")
			return
		}
	}
	c.log.Warn("Docker daemon still not answering, proceeding anyway...")
}

// DaemonRunning probes the daemon with a plain docker ps, discarding
// its output. A zero exit status is the only signal used.
func (c *Controller) DaemonRunning(ctx context.Context) bool {
	return c.run(ctx, []string{"docker", "ps"}) == nil
}

// ContainerExists reports whether a container with the given name is
// known to Docker, running or not. Unnamed runs always spawn fresh, so
// an empty name is never looked up. Listing failures are treated as
// absence; the docker command that follows reports the real problem.
func (c *Controller) ContainerExists(ctx context.Context, name string) bool {
	if name == "" {
		return false
	}
	c.log.Info("Checking if the container exists...")
	out, err := c.capture(ctx, []string{"docker", "ps", "-a"})
	if err != nil {
		c.log.Debugf("Could not list containers: %v", err)
		return false
	}
	return containerListed(out, name)
}

// containerListed scans docker ps -a output for an exact name match.
// The name is the last column of every row after the header, the same
// field awk's $NF would give.
func containerListed(out []byte, name string) bool {
	for _, listed := range listedNames(out) {
		if listed == name {
			return true
		}
	}
	return false
}

// listedNames extracts the trailing NAMES column from docker ps -a
// output, skipping the header row and blank lines.
func listedNames(out []byte) []string {
	lines := strings.Split(string(out), "\n")
	var names []string
	for i, line := range lines {
		if i == 0 {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[len(fields)-1])
	}
	return names
}

// startArgs builds the vector that reattaches to an existing container
// interactively.
func startArgs(name string) []string {
	return []string{"docker", "start", "-ia", name}
}

// runArgs builds the docker run vector from the resolved options.
// Pass-through arguments land between the ConMan-managed flags and the
// image, so they can still override anything before them. The whole
// vector is swept for empty tokens at the end; unset optional values
// simply vanish instead of producing empty arguments.
func runArgs(opts model.RunOptions) []string {
	argv := []string{"docker", "run", "-ti"}
	if opts.Ephemeral() {
		argv = append(argv, "--rm")
	} else {
		argv = append(argv, "--name", opts.Name)
	}
	argv = append(argv, "--hostname", opts.Hostname, "--workdir", opts.Workdir)
	argv = append(argv, opts.Extra...)
	argv = append(argv, opts.Image, opts.Command)
	return filterEmpty(argv)
}

// filterEmpty removes empty tokens from an argument vector.
func filterEmpty(argv []string) []string {
	out := make([]string, 0, len(argv))
	for _, arg := range argv {
		if arg != "" {
			out = append(out, arg)
		}
	}
	return out
}

// daemonStartCommand returns the platform's way of starting Docker in
// the background. The command returns quickly; the daemon finishes
// coming up on its own while EnsureDaemon polls.
func daemonStartCommand() []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open", "--background", "-a", "Docker"}
	case "windows":
		return []string{"cmd", "/c", "start", "", `C:\Program Files\Docker\Docker\Docker Desktop.exe`}
	default:
		return []string{"systemctl", "start", "docker"}
	}
}

// runCommand executes argv and waits for it, discarding all output.
// Callers only care about the exit status.
func runCommand(ctx context.Context, argv []string) error {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	return cmd.Run()
}

// captureCommand executes argv and returns its stdout. Stderr is kept
// separate and folded into the error message on failure, so callers
// never parse diagnostics as data.
func captureCommand(ctx context.Context, argv []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%s failed: %s", strings.Join(argv, " "), msg)
	}
	return []byte(stdout.String()), nil
}
