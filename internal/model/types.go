package model

import (
	"fmt"
	"regexp"
	"time"
)

// RunOptions captures everything the run command needs to produce a
// docker invocation. Values are resolved once from flags, the optional
// configuration file, and built-in defaults, in that order of precedence.
//
// RunOptions is always passed by value. Handlers and the lifecycle
// controller receive their own copy, so the resolved options cannot be
// mutated after assembly.
type RunOptions struct {
	// Image is the Docker image to run. Required when a new container
	// is spawned; ignored when Name refers to an existing container.
	Image string `json:"image"`

	// Name is the container name. When empty, a temporary container is
	// spawned with --rm and Docker picks a random name.
	Name string `json:"name,omitempty"`

	// Hostname is assigned to the container via --hostname.
	Hostname string `json:"hostname"`

	// Workdir is the working directory inside the container (--workdir).
	Workdir string `json:"workdir"`

	// Command is an optional command to run inside the container in
	// place of the image's default entrypoint arguments.
	Command string `json:"command,omitempty"`

	// Extra holds verbatim pass-through arguments. They are inserted
	// into the docker run vector before the image, untouched.
	Extra []string `json:"extra,omitempty"`
}

// Ephemeral reports whether the options describe a temporary container,
// i.e. one started without an explicit name and removed on exit.
func (o RunOptions) Ephemeral() bool {
	return o.Name == ""
}

// ContainerSummary holds runtime information about a Docker container,
// fetched from the Docker API for the ps, stop and rm commands.
type ContainerSummary struct {
	// ID is the unique Docker container identifier (SHA-256 hash).
	ID string `json:"id"`

	// Name is the human-readable Docker container name, without the
	// leading slash the API prepends.
	Name string `json:"name"`

	// Image is the image reference the container was created from.
	Image string `json:"image"`

	// State is the coarse container state (e.g. "running", "exited").
	State string `json:"state"`

	// Status is Docker's human-readable status line
	// (e.g. "Up 2 hours", "Exited (0) 3 days ago").
	Status string `json:"status"`

	// CreatedAt is the container creation timestamp.
	CreatedAt time.Time `json:"createdAt"`
}

// ShortID returns the truncated container identifier used in listings,
// matching the 12-character form docker ps prints.
func (c ContainerSummary) ShortID() string {
	if len(c.ID) > 12 {
		return c.ID[:12]
	}
	return c.ID
}

// containerNameRegex enforces Docker's container naming rule:
// a leading alphanumeric followed by alphanumerics, underscores,
// periods or hyphens.
var containerNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidateContainerName checks that name is acceptable to Docker as a
// container name. The empty string is rejected; callers that allow
// unnamed containers must skip validation instead.
func ValidateContainerName(name string) error {
	if name == "" {
		return fmt.Errorf("container name must not be empty")
	}
	if !containerNameRegex.MatchString(name) {
		return fmt.Errorf("invalid container name %q: must start with an alphanumeric character and contain only alphanumerics, underscores, periods and hyphens", name)
	}
	return nil
}

// ExitCode defines the process exit codes the CLI is allowed to use.
// ConMan exposes only two outcomes to scripts: success and failure.
// Finer-grained diagnostics belong in the log output, not in the
// exit code.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	// Help and version output also exit with this code.
	ExitSuccess ExitCode = 0

	// ExitFailure indicates the command could not be carried out:
	// bad arguments, a missing image, a Docker failure, and so on.
	ExitFailure ExitCode = 1
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
