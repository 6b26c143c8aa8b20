// Package cli - rm.go implements the "conman rm" command.
//
// The rm command removes a named container through the Docker SDK.
// A running container is only removed with --force, which kills it
// first. Temporary containers spawned without a name never need this;
// they remove themselves on exit.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xames3/conman/internal/docker"
	"github.com/xames3/conman/internal/model"
)

// rmFlags holds the flag values for the rm command.
type rmFlags struct {
	// force removes the container even when it is still running.
	force bool
}

// rmSpec describes the "rm" subcommand for the registry.
func rmSpec() SubcommandSpec {
	flags := &rmFlags{}

	return SubcommandSpec{
		Name:  "rm",
		Use:   "rm [-f] <name>",
		Short: "Remove a container",
		Long: `Remove the named container.

A running container is refused unless --force is given, in which case the daemon kills it before removal. Removal discards the container's writable layer; data not stored in a volume is lost.`,

		Args: cobra.ExactArgs(1),

		Configure: func(cmd *cobra.Command) {
			cmd.Flags().BoolVarP(&flags.force, "force", "f", false,
				"Remove the container even if it is running.")
		},

		Run: func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			return runRm(ctx, app, flags, args[0])
		},
	}
}

// runRm is the main logic function for the rm command. It resolves the
// container by name and asks the daemon to remove it.
func runRm(ctx context.Context, app *App, flags *rmFlags, name string) error {
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

	app.Log.Infof("Removing container: %s...", name)
	if err := docker.RemoveContainer(ctx, cli, target.ShortID(), flags.force); err != nil {
		return err
	}

	fmt.Printf("Removed container: %s\n", name)
	return nil
}
