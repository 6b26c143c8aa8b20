// Package cli implements the cobra-based commands for ConMan.
//
// Each subcommand (run, ps, stop, rm) is defined in its own file
// within this package as a SubcommandSpec and registered by name; see
// registry.go. This file defines the root command with the global
// flags, the Execute entry point, and the shared App state threaded
// through every handler.
package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/xames3/conman/internal/config"
	"github.com/xames3/conman/internal/docker"
	"github.com/xames3/conman/internal/logging"
	"github.com/xames3/conman/internal/model"
)

// Version, Commit and Date are set at build time via ldflags.
// They are injected from the main package to display version
// information.
var (
	// Version is the semantic version of the binary.
	Version = "0.0.1-dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// shortHelpRejection is printed when -h is used anywhere. ConMan only
// accepts the long --help form; -h is reserved so it can always be
// passed through to docker untouched.
const shortHelpRejection = "ConMan doesn't support -h, did you mean --help?"

// rootDescription is the long help for the bare conman command. It is
// re-flowed to the terminal width when the root command is built.
const rootDescription = `ConMan: An easy and flexible Docker based container manager.

ConMan is an open-source project available for Unix platforms, currently maintained on GitHub. ConMan is a wrapper for managing Docker based containers and images on your system.

For information about a particular command, run "conman <command> --help". Read complete documentation at: https://github.com/xames3/conman.`

// App carries the state shared by every command handler: the logger,
// the subcommand registry, the Docker lifecycle controller, and the
// values of the global flags. The logger and controller are plain
// fields so tests can substitute their own.
type App struct {
	// Log is the shared logger. Handlers receive it through App and
	// never reach for a package-level logger.
	Log *logrus.Logger

	// Registry holds the registered subcommands.
	Registry *Registry

	// Docker is the lifecycle controller behind the run command. It is
	// created during setup when still nil, so tests can preinstall a
	// stubbed one.
	Docker *docker.Controller

	// cfg is the parsed configuration file, nil when none was found.
	cfg *config.File

	flags globalFlags
}

// globalFlags holds the persistent flag values bound on the root
// command and inherited by every subcommand.
type globalFlags struct {
	verbosity   int
	configPath  string
	logFormat   string
	logDatefmt  string
	logLevel    string
	logPath     string
	maxBytes    int
	backupCount int
	noOutput    bool
	noColor     bool
}

// NewApp builds an App with a fresh logger and the standard command
// set registered.
func NewApp() *App {
	app := &App{
		Log:      logging.New(),
		Registry: NewRegistry(),
	}
	mustRegister(app.Registry,
		runSpec(),
		psSpec(),
		stopSpec(),
		rmSpec(),
	)
	return app
}

// mustRegister registers the built-in specs. The built-in set is fixed
// at compile time, so a registration failure is a programming error.
func mustRegister(r *Registry, specs ...SubcommandSpec) {
	for _, spec := range specs {
		if err := r.Register(spec); err != nil {
			panic(err)
		}
	}
}

// NewRootCommand creates and configures the root cobra command with
// the global flags and one generated subcommand per registry entry.
//
// The root command itself performs no action. Running conman without a
// subcommand prints help and exits successfully.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "conman",
		Short: "An easy and flexible Docker based container manager",
		Long:  wrapText(rootDescription, helpWidth()),

		// Errors are formatted in Execute; cobra must not print usage
		// or the error text a second time.
		SilenceUsage:  true,
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}
	rootCmd.SetVersionTemplate("ConMan v{{.Version}}\n")

	// Defining --help ourselves keeps cobra from claiming -h.
	rootCmd.PersistentFlags().Bool("help", false, "Show this help message and exit.")
	rootCmd.Flags().BoolP("version", "V", false, "Show ConMan's installed version and exit.")

	bindGlobalFlags(rootCmd.PersistentFlags(), &app.flags)

	// The auto-generated help and completion commands are not part of
	// ConMan's surface.
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	for _, name := range app.Registry.Names() {
		spec, _ := app.Registry.Lookup(name)
		rootCmd.AddCommand(app.buildCommand(spec))
	}

	return rootCmd
}

// bindGlobalFlags declares the persistent flags shared by every
// subcommand and binds them to the App's flag values.
func bindGlobalFlags(fs *pflag.FlagSet, flags *globalFlags) {
	fs.CountVarP(&flags.verbosity, "verbose", "v",
		"Increase logging verbosity. Repeat for more detail (-vv).")
	fs.StringVar(&flags.configPath, "config", "",
		"Path to a ConMan configuration file.")
	fs.StringVar(&flags.logLevel, "log-level", "",
		"Minimum logging level for the session.")
	fs.StringVar(&flags.logFormat, "log-format", logging.FormatText,
		"Format for log records, text or json.")
	fs.StringVar(&flags.logDatefmt, "log-datefmt", logging.TimestampLayout,
		"Timestamp layout for log records.")
	fs.StringVar(&flags.logPath, "log-path", "",
		"Path for the session log file.")
	fs.IntVar(&flags.maxBytes, "max-bytes", logging.DefaultMaxBytes,
		"Maximum size of the session log before it is rotated.")
	fs.IntVar(&flags.backupCount, "backup-count", logging.DefaultBackupCount,
		"Number of rotated session logs to keep.")
	fs.BoolVar(&flags.noOutput, "no-output", false,
		"Disable logging to the session log file.")
	fs.BoolVar(&flags.noColor, "no-color", false,
		"Suppress colored output.")
}

// buildCommand generates the cobra command for a registry entry. The
// command body only dispatches; the real work stays in the spec's Run.
func (a *App) buildCommand(spec SubcommandSpec) *cobra.Command {
	use := spec.Use
	if use == "" {
		use = spec.Name
	}
	args := spec.Args
	if args == nil {
		args = cobra.ArbitraryArgs
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: spec.Short,
		Long:  wrapText(spec.Long, helpWidth()),
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Dispatch(cmd.Context(), spec.Name, cmd, args)
		},
	}
	if spec.Configure != nil {
		spec.Configure(cmd)
	}
	return cmd
}

// Dispatch resolves name in the registry and invokes its handler. The
// lone -h pass-through token is rejected here, after flag parsing, so
// it gets the dedicated hint instead of reaching docker by accident.
func (a *App) Dispatch(ctx context.Context, name string, cmd *cobra.Command, args []string) error {
	if len(args) == 1 && args[0] == "-h" {
		return model.NewCLIError(model.ExitFailure, shortHelpRejection)
	}

	spec, ok := a.Registry.Lookup(name)
	if !ok || spec.Run == nil {
		a.Log.Error("No arguments passed to the command")
		return model.NewCLIError(model.ExitFailure, "no arguments passed to the command")
	}
	return spec.Run(ctx, a, cmd, args)
}

// setup runs before every subcommand: it loads the configuration
// file, configures logging from flags, file and environment, and
// wires the Docker controller.
func (a *App) setup(cmd *cobra.Command) error {
	cfg, cfgPath, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if err := logging.Setup(a.Log, a.logOptions(cmd)); err != nil {
		return model.WrapCLIError(model.ExitFailure, "failed to configure logging", err)
	}

	a.Log.Debugf("Go version: %s", runtime.Version())
	a.Log.Debugf("Start command for ConMan: %s", strings.Join(os.Args, " "))
	if cfgPath != "" {
		a.Log.Debugf("Loaded configuration from %s", cfgPath)
	}

	if a.Docker == nil {
		a.Docker = docker.NewController(a.Log)
	}
	return nil
}

// logOptions merges the logging configuration: a flag the user set
// wins, otherwise the configuration file, otherwise the flag default.
func (a *App) logOptions(cmd *cobra.Command) logging.Options {
	opts := logging.Options{
		Verbosity:   a.flags.verbosity,
		Level:       a.flags.logLevel,
		Format:      a.flags.logFormat,
		DateFormat:  a.flags.logDatefmt,
		Path:        a.flags.logPath,
		MaxBytes:    a.flags.maxBytes,
		BackupCount: a.flags.backupCount,
		NoColor:     a.flags.noColor,
		NoOutput:    a.flags.noOutput,
	}
	if a.cfg == nil {
		return opts
	}

	fs := cmd.Flags()
	fileOpts := a.cfg.Log
	if !fs.Changed("log-level") && fileOpts.Level != "" {
		opts.Level = fileOpts.Level
	}
	if !fs.Changed("log-format") && fileOpts.Format != "" {
		opts.Format = fileOpts.Format
	}
	if !fs.Changed("log-datefmt") && fileOpts.DateFormat != "" {
		opts.DateFormat = fileOpts.DateFormat
	}
	if !fs.Changed("log-path") && fileOpts.Path != "" {
		opts.Path = fileOpts.Path
	}
	if !fs.Changed("max-bytes") && fileOpts.MaxBytes > 0 {
		opts.MaxBytes = fileOpts.MaxBytes
	}
	if !fs.Changed("backup-count") && fileOpts.BackupCount > 0 {
		opts.BackupCount = fileOpts.BackupCount
	}
	if !fs.Changed("no-color") && fileOpts.NoColor {
		opts.NoColor = true
	}
	if !fs.Changed("no-output") && fileOpts.NoOutput {
		opts.NoOutput = true
	}
	return opts
}

// shortHelpRequested reports whether argv carries a bare -h token
// before any -- terminator. Tokens behind the terminator belong to
// docker and are never inspected.
func shortHelpRequested(argv []string) bool {
	for _, arg := range argv {
		if arg == "--" {
			return false
		}
		if arg == "-h" {
			return true
		}
	}
	return false
}

// Execute runs the root command and translates errors into exit
// codes. ConMan exits 0 on success and help, 1 on any failure.
//
// The -h pre-scan happens before cobra parses anything: any bare -h
// before a -- terminator gets the dedicated hint, because cobra would
// otherwise report it as an unknown flag.
func Execute(app *App, rootCmd *cobra.Command) {
	if shortHelpRequested(os.Args[1:]) {
		fmt.Fprintln(os.Stderr, shortHelpRejection)
		os.Exit(int(model.ExitFailure))
	}

	if err := rootCmd.Execute(); err != nil {
		if cliErr, ok := err.(*model.CLIError); ok {
			printError(cliErr.Message, cliErr.Err)
			os.Exit(int(cliErr.Code))
		}

		printError(err.Error(), nil)
		os.Exit(int(model.ExitFailure))
	}
}

// printError writes "Error: <message>" to stderr, appending the
// underlying error when there is one.
func printError(message string, underlying error) {
	if underlying != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", message, underlying)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
