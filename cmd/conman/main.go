// Package main is the entry point for the ConMan CLI.
//
// ConMan wraps the docker command line to make running and reattaching
// to containers a single short command. All functionality lives in the
// internal/cli package; main only injects build metadata and hands off.
//
// Build-time variables (version, commit, date) are injected via
// ldflags. During development they default to the values below.
package main

import (
	"github.com/xames3/conman/internal/cli"
)

// version, commit, and date are set at build time via ldflags. They
// provide binary identification for the --version flag output.
var (
	version = "0.0.1-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	app := cli.NewApp()
	rootCmd := cli.NewRootCommand(app)
	cli.Execute(app, rootCmd)
}
