// Package cli - run.go implements the "conman run" command.
//
// The run command is the primary user-facing operation. It resolves
// the container options from flags, the configuration file and the
// built-in defaults, then hands control to the lifecycle controller:
//  1. Reject the invocation early when no image can be resolved
//  2. Make sure the Docker daemon is up, starting it when needed
//  3. Reattach to the named container when Docker already knows it
//  4. Otherwise spawn a new container, temporary or named
//  5. Replace the ConMan process with the interactive docker command
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xames3/conman/internal/model"
)

// Built-in defaults for a spawned container, used when neither flags
// nor the configuration file say otherwise.
const (
	defaultHostname = "XAs-Docker-Container"
	defaultWorkdir  = "/tmp/code"
)

// runFlags holds the flag values for the run command.
// These are bound to cobra flags in runSpec's Configure.
type runFlags struct {
	image    string // --image: image to run
	name     string // --name: container name, empty spawns a temporary one
	hostname string // --hostname: hostname inside the container
	workdir  string // --workdir: working directory inside the container
	command  string // --command: command to run in the container
}

// runSpec describes the "run" subcommand for the registry.
func runSpec() SubcommandSpec {
	flags := &runFlags{}

	return SubcommandSpec{
		Name:  "run",
		Use:   "run [--image <image>] [--name <name>] [-- <docker-args>...]",
		Short: "Run a Docker container",
		Long: `Run a new Docker container from an image, or reattach to an existing container with the given name.

When a container with the requested name already exists, it is started interactively and the other options are left untouched. Without a name, a temporary container is spawned and removed again on exit.

Arguments after a -- terminator are passed to docker run verbatim, in front of the image, so any docker option ConMan does not know about still works.`,

		Args: cobra.ArbitraryArgs,

		Configure: func(cmd *cobra.Command) {
			bindRunFlags(cmd, flags)
		},

		Run: func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			return runRun(ctx, app, cmd, flags, args)
		},
	}
}

// bindRunFlags declares the run command's flags and binds them to the
// given values.
func bindRunFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().StringVar(&flags.image, "image", "",
		"Docker image to run. Required when spawning a new container.")
	cmd.Flags().StringVarP(&flags.name, "name", "n", "",
		"Name for the container. Without it a temporary container is spawned.")
	cmd.Flags().StringVar(&flags.hostname, "hostname", defaultHostname,
		"Hostname assigned inside the container.")
	cmd.Flags().StringVarP(&flags.workdir, "workdir", "w", defaultWorkdir,
		"Working directory inside the container.")
	cmd.Flags().StringVarP(&flags.command, "command", "c", "",
		"Command to run inside the container instead of the image default.")
}

// runRun validates the resolved options and delegates to the
// lifecycle controller, which does not return on success.
func runRun(ctx context.Context, app *App, cmd *cobra.Command, flags *runFlags, extra []string) error {
	opts := app.runOptions(cmd, flags, extra)

	if opts.Name != "" {
		if err := model.ValidateContainerName(opts.Name); err != nil {
			return model.WrapCLIError(model.ExitFailure, "invalid container name", err)
		}
	}

	return app.Docker.Launch(ctx, opts)
}

// runOptions assembles the RunOptions value for this invocation. A
// flag the user set wins, otherwise the configuration file, otherwise
// the flag default. The result is passed around by value afterwards.
func (a *App) runOptions(cmd *cobra.Command, flags *runFlags, extra []string) model.RunOptions {
	opts := model.RunOptions{
		Image:    flags.image,
		Name:     flags.name,
		Hostname: flags.hostname,
		Workdir:  flags.workdir,
		Command:  flags.command,
		Extra:    extra,
	}
	if a.cfg == nil {
		return opts
	}

	fs := cmd.Flags()
	if !fs.Changed("image") && a.cfg.Image != "" {
		opts.Image = a.cfg.Image
	}
	if !fs.Changed("name") && a.cfg.Name != "" {
		opts.Name = a.cfg.Name
	}
	if !fs.Changed("hostname") && a.cfg.Hostname != "" {
		opts.Hostname = a.cfg.Hostname
	}
	if !fs.Changed("workdir") && a.cfg.Workdir != "" {
		opts.Workdir = a.cfg.Workdir
	}
	if !fs.Changed("command") && a.cfg.Command != "" {
		opts.Command = a.cfg.Command
	}
	return opts
}
