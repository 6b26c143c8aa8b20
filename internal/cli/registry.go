// Package cli - registry.go holds the explicit subcommand registry.
//
// Commands are plain values registered by name; nothing registers
// itself as a side effect of being imported. Assembling the CLI means
// walking the registry and generating a cobra command per entry.
package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// SubcommandSpec describes one ConMan subcommand: its identity, its
// help text, and the functions that bind flags and carry out the work.
type SubcommandSpec struct {
	// Name is the registry key and the command word on the command
	// line. Must be unique (case-insensitively) and non-empty.
	Name string

	// Use is the one-line usage pattern, e.g. "stop <name>". When
	// empty, Name is used as-is.
	Use string

	// Short is the one-line description shown in the command listing.
	Short string

	// Long is the full description. It is re-flowed to the terminal
	// width when the command is built.
	Long string

	// Args validates positional arguments. Nil means arbitrary
	// arguments are accepted and passed through to the handler.
	Args cobra.PositionalArgs

	// Configure binds the command's own flags. May be nil.
	Configure func(cmd *cobra.Command)

	// Run carries out the command. A spec with a nil Run cannot be
	// registered.
	Run func(ctx context.Context, app *App, cmd *cobra.Command, args []string) error
}

// Registry maps command names to their specs. Names are folded to
// lower case for lookups, so "run" and "RUN" cannot coexist.
type Registry struct {
	specs map[string]SubcommandSpec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]SubcommandSpec)}
}

// Register adds a spec to the registry. Empty names, nil handlers and
// duplicate names are rejected so a broken assembly fails loudly
// instead of shadowing an existing command.
func (r *Registry) Register(spec SubcommandSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("cannot register a subcommand without a name")
	}
	if spec.Run == nil {
		return fmt.Errorf("cannot register subcommand %q without a handler", spec.Name)
	}
	key := strings.ToLower(spec.Name)
	if _, exists := r.specs[key]; exists {
		return fmt.Errorf("subcommand %q is already registered", spec.Name)
	}
	r.specs[key] = spec
	return nil
}

// Lookup returns the spec registered under name, folding case the same
// way Register does.
func (r *Registry) Lookup(name string) (SubcommandSpec, bool) {
	spec, ok := r.specs[strings.ToLower(name)]
	return spec, ok
}

// Names returns the registered names, sorted, in their original
// spelling.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.specs))
	for _, spec := range r.specs {
		names = append(names, spec.Name)
	}
	sort.Strings(names)
	return names
}
