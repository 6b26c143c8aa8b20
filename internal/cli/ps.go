// Package cli - ps.go implements the "conman ps" command.
//
// The ps command lists Docker containers through the Engine SDK, the
// same way docker ps does: running containers by default, everything
// with --all. Results are presented as a text table or a JSON array,
// depending on the --json flag.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/xames3/conman/internal/docker"
	"github.com/xames3/conman/internal/model"
)

// psFlags holds the flag values for the ps command.
// These are bound to cobra flags in psSpec's Configure.
type psFlags struct {
	// all includes stopped containers in the listing.
	all bool

	// jsonOut switches the output from the text table to JSON.
	jsonOut bool
}

// psSpec describes the "ps" subcommand for the registry.
func psSpec() SubcommandSpec {
	flags := &psFlags{}

	return SubcommandSpec{
		Name:  "ps",
		Use:   "ps [-a] [--json]",
		Short: "List Docker containers",
		Long: `List Docker containers known to the daemon.

Only running containers are shown unless --all is given. Use --json for machine-readable output.`,

		Args: cobra.NoArgs,

		Configure: func(cmd *cobra.Command) {
			cmd.Flags().BoolVarP(&flags.all, "all", "a", false,
				"Show all containers, not only running ones.")
			cmd.Flags().BoolVar(&flags.jsonOut, "json", false,
				"Print the listing as a JSON array.")
		},

		Run: func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error {
			return runPs(ctx, app, flags)
		},
	}
}

// runPs is the main logic function for the ps command. It connects to
// Docker, fetches the container listing, and prints it.
func runPs(ctx context.Context, app *App, flags *psFlags) error {
	cli, err := docker.NewClient()
	if err != nil {
		return err // NewClient already returns a CLIError
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	app.Log.Debug("Connected to the Docker daemon")

	containers, err := docker.ListContainers(ctx, cli, flags.all)
	if err != nil {
		return err
	}
	app.Log.Debugf("Found %d containers", len(containers))

	if flags.jsonOut {
		printContainersJSON(containers)
	} else {
		printContainersTable(containers)
	}
	return nil
}

// psContainerJSON is the JSON output structure for a single container
// in the ps listing.
type psContainerJSON struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Image   string    `json:"image"`
	State   string    `json:"state"`
	Status  string    `json:"status"`
	Created time.Time `json:"created"`
}

// printContainersJSON outputs the listing as a JSON array. An empty
// listing prints [] rather than null.
func printContainersJSON(containers []model.ContainerSummary) {
	entries := make([]psContainerJSON, 0, len(containers))
	for _, c := range containers {
		entries = append(entries, psContainerJSON{
			ID:      c.ShortID(),
			Name:    c.Name,
			Image:   c.Image,
			State:   c.State,
			Status:  c.Status,
			Created: c.CreatedAt,
		})
	}

	data, _ := json.MarshalIndent(entries, "", "  ")
	fmt.Println(string(data))
}

// printContainersTable outputs the listing as an aligned text table:
//
//	CONTAINER ID   IMAGE            STATUS                  NAMES
//	0123456789ab   ubuntu:latest    Up 2 hours              dev
//	fedcba987654   alpine:3.20      Exited (0) 3 days ago   cache
func printContainersTable(containers []model.ContainerSummary) {
	w := tabwriter.NewWriter(os.Stdout, 12, 1, 3, ' ', 0)
	fmt.Fprint(w, "CONTAINER ID\tIMAGE\tSTATUS\tNAMES\n")
	for _, c := range containers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ShortID(), c.Image, c.Status, c.Name)
	}
	_ = w.Flush()
}
