package docker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xames3/conman/internal/model"
)

// psOutput mimics docker ps -a: a header row, then one row per
// container with the name in the trailing column.
const psOutput = `CONTAINER ID   IMAGE          COMMAND       CREATED       STATUS                   PORTS      NAMES
a1b2c3d4e5f6   ubuntu:24.04   "/bin/bash"   2 hours ago   Exited (0) 2 hours ago              dev
9f8e7d6c5b4a   redis:7        "redis-…"     3 days ago    Up 3 days                6379/tcp   cache
`

// recorder captures every external interaction a Controller attempts,
// standing in for child processes and the final exec handoff.
type recorder struct {
	runErr     func(argv []string) error
	captureOut []byte
	captureErr error

	runs     [][]string
	captures [][]string
	execs    [][]string
	sleeps   []time.Duration
}

func newTestController(rec *recorder) (*Controller, *test.Hook) {
	return newTestControllerAt(rec, logrus.DebugLevel)
}

// newTestControllerAt pins the logger to the given level, so tests can
// check which messages survive at a lower verbosity.
func newTestControllerAt(rec *recorder, level logrus.Level) (*Controller, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(level)

	ctl := &Controller{
		log: log,
		run: func(_ context.Context, argv []string) error {
			rec.runs = append(rec.runs, argv)
			if rec.runErr != nil {
				return rec.runErr(argv)
			}
			return nil
		},
		capture: func(_ context.Context, argv []string) ([]byte, error) {
			rec.captures = append(rec.captures, argv)
			return rec.captureOut, rec.captureErr
		},
		exec: func(argv []string) error {
			rec.execs = append(rec.execs, argv)
			return nil
		},
		sleep: func(d time.Duration) {
			rec.sleeps = append(rec.sleeps, d)
		},
	}
	return ctl, hook
}

// loggedMessages flattens the captured log entries for Contains checks.
func loggedMessages(hook *test.Hook) []string {
	msgs := make([]string, 0, len(hook.Entries))
	for _, e := range hook.Entries {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// loggedAt returns only the messages recorded at the given level.
func loggedAt(hook *test.Hook, level logrus.Level) []string {
	var msgs []string
	for _, e := range hook.AllEntries() {
		if e.Level == level {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// TestLaunch_MissingImage verifies that a run without an image fails
// before any external command runs.
func TestLaunch_MissingImage(t *testing.T) {
	rec := &recorder{}
	ctl, _ := newTestController(rec)

	err := ctl.Launch(context.Background(), model.RunOptions{Name: "dev"})

	require.Error(t, err)
	cliErr, ok := err.(*model.CLIError)
	require.True(t, ok)
	assert.Equal(t, model.ExitFailure, cliErr.Code)
	assert.Equal(t, "ConMan `run` requires --image argument", cliErr.Message)

	assert.Empty(t, rec.runs)
	assert.Empty(t, rec.captures)
	assert.Empty(t, rec.execs)
}

// TestLaunch_Ephemeral verifies the unnamed path: no existence lookup,
// --rm in the vector, and no --name.
func TestLaunch_Ephemeral(t *testing.T) {
	rec := &recorder{}
	ctl, hook := newTestController(rec)

	opts := model.RunOptions{
		Image:    "ubuntu:24.04",
		Hostname: "XAs-Docker-Container",
		Workdir:  "/tmp/code",
	}
	require.NoError(t, ctl.Launch(context.Background(), opts))

	require.Len(t, rec.execs, 1)
	assert.Equal(t, []string{
		"docker", "run", "-ti", "--rm",
		"--hostname", "XAs-Docker-Container",
		"--workdir", "/tmp/code",
		"ubuntu:24.04",
	}, rec.execs[0])

	// Unnamed containers are never looked up in docker ps -a, and the
	// lookup is not announced either.
	assert.Empty(t, rec.captures)
	msgs := loggedMessages(hook)
	assert.NotContains(t, msgs, "Checking if the container exists...")
	assert.Contains(t, msgs, "Spawning a temporary container...")
}

// TestLaunch_ExistingContainer verifies that a name already known to
// Docker is reattached with docker start instead of run.
func TestLaunch_ExistingContainer(t *testing.T) {
	rec := &recorder{captureOut: []byte(psOutput)}
	ctl, hook := newTestController(rec)

	opts := model.RunOptions{
		Image:    "ubuntu:24.04",
		Name:     "dev",
		Hostname: "XAs-Docker-Container",
		Workdir:  "/tmp/code",
	}
	require.NoError(t, ctl.Launch(context.Background(), opts))

	require.Len(t, rec.captures, 1)
	assert.Equal(t, []string{"docker", "ps", "-a"}, rec.captures[0])

	require.Len(t, rec.execs, 1)
	assert.Equal(t, []string{"docker", "start", "-ia", "dev"}, rec.execs[0])

	msgs := loggedMessages(hook)
	assert.Contains(t, msgs, "Checking if the container exists...")
	assert.Contains(t, msgs, "Container: dev already exists! Starting now...")
}

// TestLaunch_NewNamedContainer verifies the named spawn path when the
// name is not in the listing.
func TestLaunch_NewNamedContainer(t *testing.T) {
	rec := &recorder{captureOut: []byte(psOutput)}
	ctl, hook := newTestController(rec)

	opts := model.RunOptions{
		Image:    "alpine:3.20",
		Name:     "sandbox",
		Hostname: "XAs-Docker-Container",
		Workdir:  "/tmp/code",
		Command:  "sh",
	}
	require.NoError(t, ctl.Launch(context.Background(), opts))

	require.Len(t, rec.execs, 1)
	assert.Equal(t, []string{
		"docker", "run", "-ti",
		"--name", "sandbox",
		"--hostname", "XAs-Docker-Container",
		"--workdir", "/tmp/code",
		"alpine:3.20", "sh",
	}, rec.execs[0])
	assert.Contains(t, loggedMessages(hook), "Spawning new container: sandbox...")
}

// TestLaunch_PassThroughPlacement verifies that extra tokens land
// between the managed flags and the image, untouched.
func TestLaunch_PassThroughPlacement(t *testing.T) {
	rec := &recorder{captureOut: []byte(psOutput)}
	ctl, _ := newTestController(rec)

	opts := model.RunOptions{
		Image:    "postgres:16",
		Name:     "db",
		Hostname: "XAs-Docker-Container",
		Workdir:  "/tmp/code",
		Extra:    []string{"-e", "POSTGRES_PASSWORD=secret", "-p", "5432:5432"},
	}
	require.NoError(t, ctl.Launch(context.Background(), opts))

	require.Len(t, rec.execs, 1)
	assert.Equal(t, []string{
		"docker", "run", "-ti",
		"--name", "db",
		"--hostname", "XAs-Docker-Container",
		"--workdir", "/tmp/code",
		"-e", "POSTGRES_PASSWORD=secret", "-p", "5432:5432",
		"postgres:16",
	}, rec.execs[0])
}

// TestLaunch_DaemonComesUp covers the slow-start path: the first probe
// fails, the starter is invoked, and polling stops as soon as a probe
// succeeds.
func TestLaunch_DaemonComesUp(t *testing.T) {
	rec := &recorder{captureOut: []byte(psOutput)}

	probes := 0
	rec.runErr = func(argv []string) error {
		if argv[0] != "docker" {
			// The daemon starter itself succeeds.
			return nil
		}
		probes++
		if probes <= 3 {
			return errors.New("Cannot connect to the Docker daemon")
		}
		return nil
	}

	ctl, hook := newTestController(rec)
	opts := model.RunOptions{Image: "ubuntu:24.04", Hostname: "h", Workdir: "/w"}
	require.NoError(t, ctl.Launch(context.Background(), opts))

	// One failed probe up front, then two failed and one successful
	// poll: three sleeps of the poll interval.
	assert.Equal(t, []time.Duration{
		daemonPollInterval, daemonPollInterval, daemonPollInterval,
	}, rec.sleeps)
	assert.Len(t, rec.execs, 1)

	assert.Contains(t, loggedAt(hook, logrus.WarnLevel),
		"Docker daemon is not running. Starting Docker...")
	assert.Contains(t, loggedAt(hook, logrus.InfoLevel),
		"Docker daemon is starting in the background, expected start time 20 secs")
	assert.Contains(t, loggedAt(hook, logrus.InfoLevel),
		"Docker daemon is running...")
}

// TestLaunch_DaemonDownWarns verifies that the daemon-down and
// poll-exhaustion messages are warnings: a logger that shows only
// warnings and up still carries both.
func TestLaunch_DaemonDownWarns(t *testing.T) {
	rec := &recorder{captureOut: []byte(psOutput)}
	rec.runErr = func(argv []string) error {
		if argv[0] != "docker" {
			return nil
		}
		return errors.New("Cannot connect to the Docker daemon")
	}

	ctl, hook := newTestControllerAt(rec, logrus.WarnLevel)
	opts := model.RunOptions{Image: "ubuntu:24.04", Hostname: "h", Workdir: "/w"}
	require.NoError(t, ctl.Launch(context.Background(), opts))

	assert.Equal(t, []string{
		"Docker daemon is not running. Starting Docker...",
		"Docker daemon still not answering, proceeding anyway...",
	}, loggedMessages(hook))
}

// TestLaunch_DaemonNeverUp verifies the bounded wait: after the poll
// attempts are exhausted the run still proceeds, leaving the real
// docker command to report the failure.
func TestLaunch_DaemonNeverUp(t *testing.T) {
	rec := &recorder{captureOut: []byte(psOutput)}
	rec.runErr = func(argv []string) error {
		if argv[0] != "docker" {
			return nil
		}
		return errors.New("Cannot connect to the Docker daemon")
	}

	ctl, _ := newTestController(rec)
	opts := model.RunOptions{Image: "ubuntu:24.04", Hostname: "h", Workdir: "/w"}
	require.NoError(t, ctl.Launch(context.Background(), opts))

	assert.Len(t, rec.sleeps, daemonPollAttempts)
	assert.Len(t, rec.execs, 1)
}

// TestLaunch_ListingFailure verifies that a failing docker ps -a is
// treated as the container being absent.
func TestLaunch_ListingFailure(t *testing.T) {
	rec := &recorder{captureErr: errors.New("docker ps -a failed: daemon went away")}
	ctl, _ := newTestController(rec)

	opts := model.RunOptions{Image: "ubuntu:24.04", Name: "dev", Hostname: "h", Workdir: "/w"}
	require.NoError(t, ctl.Launch(context.Background(), opts))

	require.Len(t, rec.execs, 1)
	assert.Equal(t, "run", rec.execs[0][1])
}

// TestContainerListed pins the last-column parse against realistic
// docker ps -a output.
func TestContainerListed(t *testing.T) {
	tests := []struct {
		name     string
		out      string
		query    string
		expected bool
	}{
		{"match in last row", psOutput, "dev", true},
		{"match in other row", psOutput, "cache", true},
		{"no match", psOutput, "missing", false},
		{"prefix does not match", psOutput, "de", false},
		{"image column does not match", psOutput, "ubuntu:24.04", false},
		{"header only", "CONTAINER ID   IMAGE   COMMAND   CREATED   STATUS   PORTS   NAMES\n", "dev", false},
		{"empty output", "", "dev", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, containerListed([]byte(tt.out), tt.query))
		})
	}
}

// TestListedNames verifies header skipping and blank-line tolerance.
func TestListedNames(t *testing.T) {
	assert.Equal(t, []string{"dev", "cache"}, listedNames([]byte(psOutput)))
	assert.Empty(t, listedNames([]byte("")))
	assert.Empty(t, listedNames([]byte("CONTAINER ID   NAMES\n\n\n")))
}

// TestRunArgs covers vector construction outside the Launch flow.
func TestRunArgs(t *testing.T) {
	tests := []struct {
		name     string
		opts     model.RunOptions
		expected []string
	}{
		{
			name: "ephemeral",
			opts: model.RunOptions{Image: "img", Hostname: "h", Workdir: "/w"},
			expected: []string{
				"docker", "run", "-ti", "--rm", "--hostname", "h", "--workdir", "/w", "img",
			},
		},
		{
			name: "named with command",
			opts: model.RunOptions{Image: "img", Name: "n", Hostname: "h", Workdir: "/w", Command: "bash"},
			expected: []string{
				"docker", "run", "-ti", "--name", "n", "--hostname", "h", "--workdir", "/w", "img", "bash",
			},
		},
		{
			name: "empty optional values are filtered out",
			opts: model.RunOptions{Image: "img", Hostname: "", Workdir: "/w"},
			expected: []string{
				"docker", "run", "-ti", "--rm", "--hostname", "--workdir", "/w", "img",
			},
		},
		{
			name: "extra before image",
			opts: model.RunOptions{Image: "img", Hostname: "h", Workdir: "/w", Extra: []string{"--net", "host"}},
			expected: []string{
				"docker", "run", "-ti", "--rm", "--hostname", "h", "--workdir", "/w", "--net", "host", "img",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, runArgs(tt.opts))
		})
	}
}

// TestStartArgs pins the reattach vector.
func TestStartArgs(t *testing.T) {
	assert.Equal(t, []string{"docker", "start", "-ia", "dev"}, startArgs("dev"))
}

// TestFilterEmpty verifies empty-token removal without reordering.
func TestFilterEmpty(t *testing.T) {
	assert.Equal(t, []string{"docker", "run"}, filterEmpty([]string{"docker", "", "run", ""}))
	assert.Empty(t, filterEmpty([]string{"", ""}))
	assert.Empty(t, filterEmpty(nil))
}
