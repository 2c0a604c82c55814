// Package config manages the gitdrip run configuration.
//
// Configuration is resolved once at startup from four layers, lowest to
// highest precedence:
//
//  1. built-in defaults (New)
//  2. GITDRIP_* environment variables (LoadFromEnvironment)
//  3. an optional YAML config file (--config)
//  4. command-line flags (SetupFlags / FinishFlags)
//
// Finalize validates the merged result (positive interval, relative target
// file, parsable cron schedule) and resolves derived values such as the
// absolute repository path and the default XDG log file location. After
// Finalize the configuration is immutable for the process lifetime.
package config
