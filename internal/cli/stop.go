// Package cli - stop.go implements the "conman stop" command.
//
// The stop command gracefully stops a named container through the
// Docker SDK. The container keeps its state and data and can be
// reattached later with "conman run --name <name>".
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xames3/conman/internal/docker"
	"github.com/xames3/conman/internal/model"
)

// stopSpec describes the "stop" subcommand for the registry.
func stopSpec() SubcommandSpec {
	return SubcommandSpec{
		Name:  "stop",
		Use:   "stop <name>",
		Short: "Stop a running container",
		Long: `Stop the named container.

The daemon sends the container's main process a SIGTERM and escalates to SIGKILL after its grace period. The container is not removed; use "conman rm" for that.`,

		Args: cobra.ExactArgs(1),

		Run: func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			return runStop(ctx, app, args[0])
		},
	}
}

// runStop is the main logic function for the stop command. It resolves
// the container by name and asks the daemon to stop it.
func runStop(ctx context.Context, app *App, name string) error {
	if err := model.ValidateContainerName(name); err != nil {
		return model.WrapCLIError(model.ExitFailure, "invalid container name", err)
	}

	cli, err := docker.NewClient()
	if err != nil {
		return err // NewClient already returns a CLIError
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	target, err := docker.FindContainer(ctx, cli, name)
	if err != nil {
		return err
	}

	app.Log.Infof("Stopping container: %s...", name)
	if err := docker.StopContainer(ctx, cli, target.ShortID()); err != nil {
		return err
	}

	fmt.Printf("Stopped container: %s\n", name)
	return nil
}
