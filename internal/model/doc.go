// Package model defines the domain types and value objects for ConMan.
//
// This package contains pure data structures with no external dependencies:
// the resolved run options (RunOptions), container listings fetched from
// the Docker API (ContainerSummary), and container name validation.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
// ConMan restricts itself to two exit codes, success and failure, so the
// full set of CLIError codes is exactly {ExitSuccess, ExitFailure}.
package model
