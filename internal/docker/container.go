// container.go implements the SDK-backed container queries behind the
// ps, stop and rm commands. The interactive run path does not live
// here; see lifecycle.go for the Controller that drives the docker CLI
// directly.
package docker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"

	"github.com/xames3/conman/internal/model"
)

// ListContainers queries the Docker daemon for containers and maps them
// to the domain summary type. When all is false only running containers
// are returned, matching docker ps; with all set, stopped and exited
// containers are included as well.
func ListContainers(ctx context.Context, cli *Client, all bool) ([]model.ContainerSummary, error) {
	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All: all,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitFailure,
			"failed to list Docker containers",
			err,
		)
	}

	result := make([]model.ContainerSummary, 0, len(containers))
	for _, c := range containers {
		result = append(result, summaryFromContainer(c))
	}

	return result, nil
}

// summaryFromContainer converts a Docker API container struct to the
// domain summary. Pure mapping, no side effects.
//
// The API reports container names with a leading "/" (an artifact of
// the old linking system), which is stripped for display.
func summaryFromContainer(c types.Container) model.ContainerSummary {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerSummary{
		ID:        c.ID,
		Name:      name,
		Image:     c.Image,
		State:     c.State,
		Status:    c.Status,
		CreatedAt: time.Unix(c.Created, 0),
	}
}

// FindContainer resolves a container name to its summary, searching
// running and stopped containers alike. Unknown names are a user
// error, not a daemon failure.
func FindContainer(ctx context.Context, cli *Client, name string) (model.ContainerSummary, error) {
	summaries, err := ListContainers(ctx, cli, true)
	if err != nil {
		return model.ContainerSummary{}, err
	}
	return pickContainer(summaries, name)
}

// pickContainer selects the summary whose name matches exactly.
func pickContainer(summaries []model.ContainerSummary, name string) (model.ContainerSummary, error) {
	for _, c := range summaries {
		if c.Name == name {
			return c, nil
		}
	}
	return model.ContainerSummary{}, model.NewCLIError(
		model.ExitFailure,
		fmt.Sprintf("no such container: %s", name),
	)
}

// StopContainer stops a running container by ID. The daemon sends the
// main process a SIGTERM and escalates to SIGKILL after its default
// grace period (normally ten seconds).
func StopContainer(ctx context.Context, cli *Client, containerID string) error {
	err := cli.Inner().ContainerStop(ctx, containerID, container.StopOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitFailure,
			fmt.Sprintf("failed to stop container %q", containerID),
			err,
		)
	}
	return nil
}

// RemoveContainer removes a container by ID. The container must be
// stopped first unless force is true, in which case the daemon kills
// it before removal.
func RemoveContainer(ctx context.Context, cli *Client, containerID string, force bool) error {
	err := cli.Inner().ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: force,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitFailure,
			fmt.Sprintf("failed to remove container %q", containerID),
			err,
		)
	}
	return nil
}
