package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/pflag"

	"github.com/gitdrip/gitdrip/internal/errors"
)

const (
	// DefaultIntervalSeconds between cycles
	DefaultIntervalSeconds = 3600

	// DefaultFilePath is the target file appended to, relative to the repository
	DefaultFilePath = "TODO.md"

	// DefaultMessage is the base commit message; a timestamp is appended per commit
	DefaultMessage = "chore: micro update"
)

// Config holds the run configuration. It is populated once at startup
// (defaults, then environment, then an optional config file, then flags),
// validated by Finalize, and read-only afterwards.
type Config struct {
	// Repository and target file
	RepoPath string
	FilePath string

	// Cycle timing
	IntervalSeconds int
	Randomize       bool
	Schedule        string

	// Commit behavior
	Push      bool
	Branch    string
	Message   string
	SkipHooks bool

	// Entry generation
	TemplatesFile string
	Prefix        string

	// User experience
	Quiet bool

	// Debugging
	Debug   bool
	LogFile string

	// Special flags
	ConfigFile string
	Version    bool

	// Build metadata
	VersionInfo VersionInfo
}

// VersionInfo contains build-time version metadata.
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		RepoPath:        "",
		FilePath:        DefaultFilePath,
		IntervalSeconds: DefaultIntervalSeconds,
		Push:            true,
		Message:         DefaultMessage,

		VersionInfo: VersionInfo{
			Version: "dev",
			Commit:  "unknown",
			Date:    "unknown",
		},
	}
}

// LoadFromEnvironment updates the config from GITDRIP_* environment variables.
func (c *Config) LoadFromEnvironment() {
	c.RepoPath = getEnvString("GITDRIP_REPO", c.RepoPath)
	c.FilePath = getEnvString("GITDRIP_FILE", c.FilePath)
	c.IntervalSeconds = getEnvInt("GITDRIP_INTERVAL", c.IntervalSeconds)
	c.Randomize = getEnvBool("GITDRIP_RANDOMIZE", c.Randomize)
	c.Schedule = getEnvString("GITDRIP_SCHEDULE", c.Schedule)
	c.Push = getEnvBool("GITDRIP_PUSH", c.Push)
	c.Branch = getEnvString("GITDRIP_BRANCH", c.Branch)
	c.Message = getEnvString("GITDRIP_MESSAGE", c.Message)
	c.SkipHooks = getEnvBool("GITDRIP_NO_VERIFY", c.SkipHooks)
	c.TemplatesFile = getEnvString("GITDRIP_TEMPLATES_FILE", c.TemplatesFile)
	c.Prefix = getEnvString("GITDRIP_PREFIX", c.Prefix)
	c.Debug = getEnvBool("GITDRIP_DEBUG", c.Debug)
	c.LogFile = getEnvString("GITDRIP_LOG_FILE", c.LogFile)
}

// SetupFlags registers command-line flags that override config values.
// The flag defaults are the config's current values, so precedence falls out
// of registration order: call this after LoadFromEnvironment.
func (c *Config) SetupFlags(fs *pflag.FlagSet) {
	// Inverted flag for CLI ergonomics: push is on by default
	origPush := c.Push

	fs.StringVarP(&c.RepoPath, "repo", "r", c.RepoPath, "Path to git repository (default: current directory)")
	fs.StringVarP(&c.FilePath, "file", "f", c.FilePath, "Target file to append entries, relative to the repository")
	fs.IntVarP(&c.IntervalSeconds, "interval", "i", c.IntervalSeconds, "Seconds between cycles")
	fs.BoolVar(&c.Randomize, "randomize", c.Randomize, "Add ±20% jitter to the interval")
	fs.StringVar(&c.Schedule, "schedule", c.Schedule, "Cron expression overriding the interval (standard 5-field spec)")
	fs.BoolVar(&c.Push, "no-push", !origPush, "Skip pushing after each commit")
	fs.StringVarP(&c.Branch, "branch", "b", c.Branch, "Branch to switch/create before looping")
	fs.StringVarP(&c.Message, "message", "m", c.Message, "Base commit message (timestamp appended)")
	fs.BoolVar(&c.SkipHooks, "no-verify", c.SkipHooks, "Pass --no-verify to git commit to skip hooks")
	fs.StringVar(&c.TemplatesFile, "templates-file", c.TemplatesFile, "Path to a file of newline-separated templates")
	fs.StringVar(&c.Prefix, "prefix", c.Prefix, "Prefix for each appended line instead of the default bullet")
	fs.BoolVarP(&c.Quiet, "quiet", "q", c.Quiet, "Hide informational messages")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Path to debug log file")
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "Path to a YAML config file")
	fs.BoolVar(&c.Version, "version", c.Version, "Print version information and exit")
}

// FinishFlags resolves flag values that need post-parse handling: the inverted
// no-push flag and the optional config file (file values yield to flags the
// user set explicitly).
func (c *Config) FinishFlags(fs *pflag.FlagSet) error {
	// no-push carries the inverse of Push
	c.Push = !c.Push

	if c.ConfigFile != "" {
		if err := c.applyFile(c.ConfigFile, fs); err != nil {
			return err
		}
	}
	return nil
}

// Finalize validates the configuration and resolves derived values.
func (c *Config) Finalize() error {
	if c.IntervalSeconds < 1 {
		return errors.NewConfigError("interval", c.IntervalSeconds,
			errors.Wrap(errors.ErrInvalidConfiguration, "interval must be a positive number of seconds"))
	}

	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return errors.NewConfigError("schedule", c.Schedule,
				errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("invalid cron expression: %v", err)))
		}
	}

	if c.RepoPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return errors.NewConfigError("repo", "",
				errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to get current directory: %v", err)))
		}
		c.RepoPath = cwd
	}

	absRepoPath, err := filepath.Abs(c.RepoPath)
	if err != nil {
		return errors.NewConfigError("repo", c.RepoPath,
			errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to resolve absolute path: %v", err)))
	}
	c.RepoPath = absRepoPath

	if c.FilePath == "" {
		c.FilePath = DefaultFilePath
	}
	if filepath.IsAbs(c.FilePath) {
		return errors.NewConfigError("file", c.FilePath,
			errors.Wrap(errors.ErrInvalidConfiguration, "target file must be relative to the repository"))
	}

	if c.Message == "" {
		c.Message = DefaultMessage
	}

	if c.LogFile == "" {
		c.LogFile = defaultLogFile(c.RepoPath)
	}

	return nil
}

// TargetPath returns the absolute path of the target file.
func (c *Config) TargetPath() string {
	return filepath.Join(c.RepoPath, c.FilePath)
}

// defaultLogFile follows the XDG Base Directory Specification and keys the
// file name on a hash of the repository path, so concurrent runs against
// different repositories do not share a log.
func defaultLogFile(repoPath string) string {
	logDir := os.Getenv("XDG_DATA_HOME")
	if logDir == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			logDir = filepath.Join(homeDir, ".local", "share")
		} else {
			logDir = os.TempDir()
		}
	}

	repoHash := fmt.Sprintf("%x", sha256.Sum256([]byte(repoPath)))[:16]
	return filepath.Join(logDir, "gitdrip", "logs", fmt.Sprintf("gitdrip-%s.log", repoHash))
}

// getEnvString returns an environment variable string or a default value.
func getEnvString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt returns an environment variable as int or a default value.
func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(valueStr) {
		case "true", "1", "yes":
			return true
		case "false", "0", "no":
			return false
		}
	}
	return defaultValue
}
