package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// EnvSkipLogging disables the file sink when set to a truthy value
	// (1, t or true, in any case). Console logging is unaffected.
	EnvSkipLogging = "CONMAN_SKIP_LOGGING"

	// EnvLoggingLevel overrides every other level source when it names
	// a known level. Unknown values are ignored.
	EnvLoggingLevel = "CONMAN_LOGGING_LEVEL"

	// TimestampLayout renders timestamps as ISO 8601 with a literal
	// trailing Z, e.g. 2026-08-21T14:03:59Z.
	TimestampLayout = "2006-01-02T15:04:05Z"

	// DefaultMaxBytes is the rotation threshold for the session log.
	DefaultMaxBytes = 10_000_000

	// DefaultBackupCount is how many rotated session logs are kept.
	DefaultBackupCount = 10

	// FormatText renders records as logrus text lines.
	FormatText = "text"

	// FormatJSON renders records as one JSON object per line.
	FormatJSON = "json"
)

// sessionDir and sessionFile locate the default log file relative to
// the user's home directory.
const (
	sessionDir  = ".conman"
	sessionFile = "session.log"
)

// Options carries the resolved logging configuration. Zero values fall
// back to the package defaults, so an empty Options is usable.
type Options struct {
	// Verbosity counts repeated -v flags. 1 selects info, 2 or more
	// select debug. When positive it takes precedence over Level.
	Verbosity int

	// Level names the minimum severity (trace, debug, info, warn,
	// warning, error, fatal, critical). Consulted only when Verbosity
	// is zero. Empty or unknown values fall back to warn.
	Level string

	// Format selects the record encoding: FormatText or FormatJSON.
	Format string

	// DateFormat is the Go time layout for timestamps. Empty means
	// TimestampLayout.
	DateFormat string

	// Path is the session log file. Empty means ~/.conman/session.log.
	Path string

	// MaxBytes is the rotation threshold. Zero means DefaultMaxBytes.
	MaxBytes int

	// BackupCount is the number of rotated files kept. Zero means
	// DefaultBackupCount.
	BackupCount int

	// NoColor suppresses ANSI escapes on the console even when stderr
	// is a terminal. The file sink never receives colors.
	NoColor bool

	// NoOutput disables the file sink entirely.
	NoOutput bool
}

// New returns a fresh logger that writes plain text to stderr at warn
// level. This is the state commands observe before Setup runs, so
// anything logged that early still comes out sensibly.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: TimestampLayout,
	})
	return log
}

// Setup applies opts to log. It replaces the output, formatter, level
// and hooks wholesale, so calling it twice reconfigures the logger
// rather than duplicating sinks.
func Setup(log *logrus.Logger, opts Options) error {
	log.SetOutput(os.Stderr)
	log.SetLevel(ResolveLevel(opts.Verbosity, opts.Level))

	datefmt := opts.DateFormat
	if datefmt == "" {
		datefmt = TimestampLayout
	}
	log.SetFormatter(consoleFormatter(opts.Format, datefmt, opts.NoColor))
	log.ReplaceHooks(make(logrus.LevelHooks))

	path, err := ResolveLogPath(SkipFileLogging(opts.NoOutput), opts.Path)
	if err != nil {
		return fmt.Errorf("failed to prepare log directory: %w", err)
	}
	if path == "" {
		return nil
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	backups := opts.BackupCount
	if backups <= 0 {
		backups = DefaultBackupCount
	}
	log.AddHook(&fileHook{
		writer: &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxMegabytes(maxBytes),
			MaxBackups: backups,
		},
		formatter: fileFormatter(opts.Format, datefmt),
	})
	return nil
}

// ResolveLevel picks the effective log level. The precedence is the
// CONMAN_LOGGING_LEVEL environment variable, then the -v count, then
// the named level, then warn.
func ResolveLevel(verbosity int, name string) logrus.Level {
	if env := os.Getenv(EnvLoggingLevel); env != "" {
		if level, ok := ParseLevel(env); ok {
			return level
		}
	}
	if verbosity > 0 {
		if verbosity >= 2 {
			return logrus.DebugLevel
		}
		return logrus.InfoLevel
	}
	if name != "" {
		if level, ok := ParseLevel(name); ok {
			return level
		}
	}
	return logrus.WarnLevel
}

// ParseLevel maps a case-insensitive level name to a logrus level.
// The accepted names include the aliases warning, critical and notset;
// notset keeps everything, so it maps to trace.
func ParseLevel(name string) (logrus.Level, bool) {
	switch strings.ToUpper(name) {
	case "TRACE", "NOTSET":
		return logrus.TraceLevel, true
	case "DEBUG":
		return logrus.DebugLevel, true
	case "INFO":
		return logrus.InfoLevel, true
	case "WARN", "WARNING":
		return logrus.WarnLevel, true
	case "ERROR":
		return logrus.ErrorLevel, true
	case "FATAL", "CRITICAL":
		return logrus.FatalLevel, true
	default:
		return logrus.WarnLevel, false
	}
}

// SkipFileLogging reports whether the file sink should be disabled,
// either by the --no-output flag or by CONMAN_SKIP_LOGGING.
func SkipFileLogging(flag bool) bool {
	return flag || isTruthy(os.Getenv(EnvSkipLogging))
}

// ResolveLogPath returns the session log path, creating its parent
// directory if needed. When skip is true it returns the empty string
// and touches nothing on disk.
func ResolveLogPath(skip bool, path string) (string, error) {
	if skip {
		return "", nil
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot locate home directory: %w", err)
		}
		path = filepath.Join(home, sessionDir, sessionFile)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// isTruthy implements the loose boolean parsing used for environment
// toggles: 1, t and true count, in any case.
func isTruthy(s string) bool {
	switch strings.ToLower(s) {
	case "1", "t", "true":
		return true
	default:
		return false
	}
}

// maxMegabytes converts a byte threshold to the whole megabytes
// lumberjack expects, never returning less than one.
func maxMegabytes(bytes int) int {
	mb := bytes / (1024 * 1024)
	if mb < 1 {
		mb = 1
	}
	return mb
}

func consoleFormatter(format, datefmt string, noColor bool) logrus.Formatter {
	if format == FormatJSON {
		return &logrus.JSONFormatter{TimestampFormat: datefmt}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: datefmt,
		DisableColors:   noColor,
	}
}

// fileFormatter mirrors the console encoding but never emits ANSI
// escapes, whatever the terminal looks like.
func fileFormatter(format, datefmt string) logrus.Formatter {
	if format == FormatJSON {
		return &logrus.JSONFormatter{TimestampFormat: datefmt}
	}
	return &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: datefmt,
		DisableColors:   true,
	}
}

// fileHook copies every record that passes the logger level into the
// rotating session log, formatted independently of the console.
type fileHook struct {
	writer    *lumberjack.Logger
	formatter logrus.Formatter
}

// Levels reports that the hook fires for every level; the logger's own
// level already gates what reaches hooks.
func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire formats the entry and appends it to the session log.
func (h *fileHook) Fire(entry *logrus.Entry) error {
	b, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(b)
	return err
}
