package docker

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/docker/docker/client"

	"github.com/xames3/conman/internal/model"
)

// defaultPingTimeout bounds the daemon liveness probe. Five seconds is
// generous even for Docker Desktop on macOS, which answers noticeably
// slower than a native Linux daemon.
const defaultPingTimeout = 5 * time.Second

// Client wraps the Docker Engine SDK client used by the query-style
// commands (ps, stop, rm). It adds automatic socket detection across
// platforms and a bounded connectivity check.
//
// Usage:
//
//	c, err := docker.NewClient()
//	if err != nil { /* handle */ }
//	defer c.Close()
//	if err := c.Ping(ctx); err != nil { /* daemon not reachable */ }
type Client struct {
	// inner is the underlying Docker SDK client. Wrapping instead of
	// embedding keeps the exposed surface small.
	inner *client.Client
}

// NewClient creates a Docker client with automatic socket detection.
//
// The connection string is chosen in this order:
//  1. DOCKER_HOST environment variable, used as-is when set
//  2. Platform defaults:
//     - Linux: /var/run/docker.sock
//     - macOS: /var/run/docker.sock, then ~/.docker/run/docker.sock
//     - Windows: npipe:////./pipe/docker_engine
func NewClient() (*Client, error) {
	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		return newClientWithHost(dockerHost)
	}

	host, err := detectDockerHost()
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitFailure,
			"Docker socket not found",
			err,
		)
	}

	return newClientWithHost(host)
}

// newClientWithHost creates a Docker client for the given connection
// string, e.g. "unix:///var/run/docker.sock".
func newClientWithHost(host string) (*Client, error) {
	// API version negotiation lets the same binary talk to daemons
	// older and newer than the SDK's pinned API version.
	c, err := client.NewClientWithOpts(
		client.WithHost(host),
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitFailure,
			fmt.Sprintf("failed to create Docker client for host %q", host),
			err,
		)
	}

	return &Client{inner: c}, nil
}

// detectDockerHost returns the connection string for the current
// platform. Unix socket paths are probed for existence; a socket that
// exists but has no daemon behind it is caught later by Ping.
func detectDockerHost() (string, error) {
	switch runtime.GOOS {
	case "linux":
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
		})

	case "darwin":
		// Docker Desktop symlinks /var/run/docker.sock, but newer
		// versions only create the per-user socket.
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return detectUnixSocket([]string{
				"/var/run/docker.sock",
			})
		}
		return detectUnixSocket([]string{
			"/var/run/docker.sock",
			homeDir + "/.docker/run/docker.sock",
		})

	case "windows":
		// The named pipe path is fixed by Docker Desktop. Pipes cannot
		// be probed with a plain stat, so hand the address to the SDK
		// and let Ping report an unreachable daemon.
		return "npipe:////./pipe/docker_engine", nil

	default:
		return "", fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

// detectUnixSocket returns the host URI for the first socket path that
// exists, checked in the given order.
func detectUnixSocket(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return "unix://" + path, nil
		}
	}
	return "", fmt.Errorf(
		"Docker socket not found at any of %v, is Docker running?",
		paths,
	)
}

// Ping verifies that the Docker daemon is reachable and responsive,
// waiting at most defaultPingTimeout.
func (c *Client) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()

	_, err := c.inner.Ping(pingCtx)
	if err != nil {
		return model.WrapCLIError(
			model.ExitFailure,
			"Docker daemon is not responding, is Docker running?",
			err,
		)
	}
	return nil
}

// Close releases the resources held by the client. Safe to call more
// than once.
func (c *Client) Close() error {
	if c.inner != nil {
		return c.inner.Close()
	}
	return nil
}

// Inner exposes the underlying SDK client for operations not covered
// by the wrapper.
func (c *Client) Inner() *client.Client {
	return c.inner
}
