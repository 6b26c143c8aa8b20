// Package config loads ConMan's optional configuration file.
//
// The file supplies defaults for the run command and for logging, so
// commonly reused images, names and log settings do not have to be
// repeated on every invocation. Command-line flags always win over
// file values.
//
// Two encodings are accepted: JSONC (JSON with comments and trailing
// commas, via github.com/tidwall/jsonc) and YAML. The encoding is
// picked by file extension, with anything that is not .yaml or .yml
// treated as JSONC.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/xames3/conman/internal/model"
)

// EnvConfigPath points ConMan at a configuration file, overriding the
// default search locations. The --config flag overrides this in turn.
const EnvConfigPath = "CONMAN_CONFIG"

// configDir is the per-user directory searched for the default files.
const configDir = ".conman"

// defaultNames are the file names probed under ~/.conman, in order.
// The first one that exists wins.
var defaultNames = []string{"config.json", "config.yaml", "config.yml"}

// File represents the parsed configuration file. Only the fields
// relevant to ConMan are included; other fields are silently ignored
// during parsing. Empty values mean "not set" and leave the built-in
// defaults in place.
type File struct {
	// Image is the default image for run.
	Image string `json:"image,omitempty" yaml:"image,omitempty"`

	// Name is the default container name for run.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Hostname is the default container hostname for run.
	Hostname string `json:"hostname,omitempty" yaml:"hostname,omitempty"`

	// Workdir is the default working directory for run.
	Workdir string `json:"workdir,omitempty" yaml:"workdir,omitempty"`

	// Command is the default command for run.
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// Log holds defaults for the logging flags.
	Log Log `json:"log,omitempty" yaml:"log,omitempty"`
}

// Log mirrors the logging flags that make sense as persistent
// configuration. The field names follow the flag names.
type Log struct {
	// Format selects text or json records.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`

	// DateFormat is a Go time layout for timestamps.
	DateFormat string `json:"datefmt,omitempty" yaml:"datefmt,omitempty"`

	// Level names the minimum severity when -v is not given.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Path overrides the session log location.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// MaxBytes is the rotation threshold for the session log.
	MaxBytes int `json:"max_bytes,omitempty" yaml:"max_bytes,omitempty"`

	// BackupCount is the number of rotated session logs kept.
	BackupCount int `json:"backup_count,omitempty" yaml:"backup_count,omitempty"`

	// NoColor suppresses ANSI escapes on the console.
	NoColor bool `json:"no_color,omitempty" yaml:"no_color,omitempty"`

	// NoOutput disables the session log entirely.
	NoOutput bool `json:"no_output,omitempty" yaml:"no_output,omitempty"`
}

// Load finds and parses the configuration file. The explicit path (the
// --config flag) is tried first, then CONMAN_CONFIG, then the default
// names under ~/.conman. It returns the parsed file and the path it
// came from, or (nil, "") when no file exists.
//
// A missing file is only an error when the user named it explicitly;
// absent defaults are normal. A file that exists but cannot be parsed
// is always an error.
func Load(explicit string) (*File, string, error) {
	if explicit == "" {
		explicit = os.Getenv(EnvConfigPath)
	}
	if explicit != "" {
		cfg, err := parseFile(explicit)
		if err != nil {
			return nil, "", err
		}
		return cfg, explicit, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		// With no home directory there are no default locations to
		// probe. Running without a configuration file is fine.
		return nil, "", nil
	}
	for _, name := range defaultNames {
		path := filepath.Join(home, configDir, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := parseFile(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	return nil, "", nil
}

// parseFile reads and decodes a single configuration file.
func parseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitFailure,
				fmt.Sprintf("configuration file not found: %s", path),
				err,
			)
		}
		return nil, model.WrapCLIError(
			model.ExitFailure,
			fmt.Sprintf("failed to read configuration file: %s", path),
			err,
		)
	}

	var cfg File
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, model.WrapCLIError(
				model.ExitFailure,
				fmt.Sprintf("failed to parse configuration file at %s", path),
				err,
			)
		}
	default:
		// Strip JSONC comments (// and /* */) and trailing commas
		// before handing the bytes to encoding/json. Hand-edited
		// config files frequently contain both.
		clean := jsonc.ToJSON(data)
		if err := json.Unmarshal(clean, &cfg); err != nil {
			return nil, model.WrapCLIError(
				model.ExitFailure,
				fmt.Sprintf("failed to parse configuration file at %s", path),
				err,
			)
		}
	}
	return &cfg, nil
}
