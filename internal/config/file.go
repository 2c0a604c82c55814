package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/gitdrip/gitdrip/internal/errors"
)

// fileConfig mirrors Config for YAML decoding. Pointer fields distinguish
// "absent" from zero values, so the file only overrides what it names.
type fileConfig struct {
	Repo          *string `yaml:"repo"`
	File          *string `yaml:"file"`
	Interval      *int    `yaml:"interval"`
	Randomize     *bool   `yaml:"randomize"`
	Schedule      *string `yaml:"schedule"`
	Push          *bool   `yaml:"push"`
	Branch        *string `yaml:"branch"`
	Message       *string `yaml:"message"`
	NoVerify      *bool   `yaml:"no_verify"`
	TemplatesFile *string `yaml:"templates_file"`
	Prefix        *string `yaml:"prefix"`
	Debug         *bool   `yaml:"debug"`
	LogFile       *string `yaml:"log_file"`
}

// applyFile merges a YAML config file into the config. Values for flags the
// user set explicitly on the command line are left alone, preserving the
// defaults < environment < file < flags precedence.
func (c *Config) applyFile(path string, fs *pflag.FlagSet) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewConfigError("config", path,
			errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to read config file: %v", err)))
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return errors.NewConfigError("config", path,
			errors.Wrap(errors.ErrInvalidConfiguration, fmt.Sprintf("failed to parse config file: %v", err)))
	}

	changed := func(name string) bool {
		return fs != nil && fs.Changed(name)
	}

	if fc.Repo != nil && !changed("repo") {
		c.RepoPath = *fc.Repo
	}
	if fc.File != nil && !changed("file") {
		c.FilePath = *fc.File
	}
	if fc.Interval != nil && !changed("interval") {
		c.IntervalSeconds = *fc.Interval
	}
	if fc.Randomize != nil && !changed("randomize") {
		c.Randomize = *fc.Randomize
	}
	if fc.Schedule != nil && !changed("schedule") {
		c.Schedule = *fc.Schedule
	}
	if fc.Push != nil && !changed("no-push") {
		c.Push = *fc.Push
	}
	if fc.Branch != nil && !changed("branch") {
		c.Branch = *fc.Branch
	}
	if fc.Message != nil && !changed("message") {
		c.Message = *fc.Message
	}
	if fc.NoVerify != nil && !changed("no-verify") {
		c.SkipHooks = *fc.NoVerify
	}
	if fc.TemplatesFile != nil && !changed("templates-file") {
		c.TemplatesFile = *fc.TemplatesFile
	}
	if fc.Prefix != nil && !changed("prefix") {
		c.Prefix = *fc.Prefix
	}
	if fc.Debug != nil && !changed("debug") {
		c.Debug = *fc.Debug
	}
	if fc.LogFile != nil && !changed("log-file") {
		c.LogFile = *fc.LogFile
	}

	return nil
}
