// Package config holds the boot configuration of the hosted machine. Values
// come from an optional YAML file and are overridden by command-line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"sort"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file loaded when --config is not given and the
// file exists in the working directory.
const DefaultPath = "unsafeos.yaml"

// Console describes the character grid emulated on the host terminal.
type Console struct {
	Width      uint32 `yaml:"width"`
	Height     uint32 `yaml:"height"`
	TabWidth   uint8  `yaml:"tab_width"`
	Scrollback uint32 `yaml:"scrollback"`
}

// Seed lists extra filesystem content created at boot.
type Seed struct {
	Dirs  []string          `yaml:"dirs,omitempty"`
	Files map[string]string `yaml:"files,omitempty"`
}

// Config holds all boot options.
type Config struct {
	QueueCapacity     int     `yaml:"queue_capacity"`
	WakeQueueCapacity int     `yaml:"wake_queue_capacity"`
	Prompt            string  `yaml:"prompt"`
	Mount             string  `yaml:"mount,omitempty"`
	LogLevel          string  `yaml:"log_level"`
	LogFile           string  `yaml:"log_file,omitempty"`
	Console           Console `yaml:"console"`
	Seed              Seed    `yaml:"seed,omitempty"`

	// path of the file the config was read from, if any.
	path string
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		QueueCapacity:     100,
		WakeQueueCapacity: 100,
		Prompt:            "$ ",
		LogLevel:          "info",
		Console: Console{
			Width:      80,
			Height:     25,
			TabWidth:   4,
			Scrollback: 100,
		},
	}
}

// Path returns the file the configuration was read from, or an empty string.
func (c *Config) Path() string {
	return c.path
}

// Load builds the configuration from args (without the program name). The
// file named by --config, or DefaultPath if it exists, is read first and
// explicitly set flags override its values. pflag.ErrHelp is returned
// unwrapped when --help is given.
func Load(args []string) (*Config, error) {
	cfg := DefaultConfig()

	flagSet := pflag.NewFlagSet("unsafeos", pflag.ContinueOnError)
	configFile := flagSet.StringP("config", "c", "", "YAML configuration file")
	queueCapacity := flagSet.Int("queue-capacity", cfg.QueueCapacity, "scancode queue capacity")
	wakeQueueCapacity := flagSet.Int("wake-queue-capacity", cfg.WakeQueueCapacity, "executor wake queue capacity")
	prompt := flagSet.String("prompt", cfg.Prompt, "shell prompt")
	mount := flagSet.StringP("mount", "m", "", "export the filesystem through FUSE at this directory")
	logLevel := flagSet.String("log-level", cfg.LogLevel, "host log level (debug, info, warn, error)")
	logFile := flagSet.String("log-file", "", "write host logs to this file instead of stderr")
	width := flagSet.Uint32("width", cfg.Console.Width, "console width in columns")
	height := flagSet.Uint32("height", cfg.Console.Height, "console height in rows")

	if err := flagSet.Parse(args); err != nil {
		return nil, err
	}

	if *configFile != "" {
		if err := cfg.loadFromFile(*configFile); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat(DefaultPath); err == nil {
		if err := cfg.loadFromFile(DefaultPath); err != nil {
			return nil, err
		}
	}

	if flagSet.Changed("queue-capacity") {
		cfg.QueueCapacity = *queueCapacity
	}
	if flagSet.Changed("wake-queue-capacity") {
		cfg.WakeQueueCapacity = *wakeQueueCapacity
	}
	if flagSet.Changed("prompt") {
		cfg.Prompt = *prompt
	}
	if flagSet.Changed("mount") {
		cfg.Mount = *mount
	}
	if flagSet.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}
	if flagSet.Changed("log-file") {
		cfg.LogFile = *logFile
	}
	if flagSet.Changed("width") {
		cfg.Console.Width = *width
	}
	if flagSet.Changed("height") {
		cfg.Console.Height = *height
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFromFile(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", file, err)
	}

	c.path = file
	return nil
}

// Validate reports the first invalid option.
func (c *Config) Validate() error {
	if c.QueueCapacity <= 0 {
		return fmt.Errorf("queue_capacity must be positive, got %d", c.QueueCapacity)
	}
	if c.WakeQueueCapacity <= 0 {
		return fmt.Errorf("wake_queue_capacity must be positive, got %d", c.WakeQueueCapacity)
	}
	if c.Console.Width == 0 || c.Console.Height == 0 {
		return fmt.Errorf("console size must be positive, got %dx%d", c.Console.Width, c.Console.Height)
	}
	if c.Console.Height < 2 {
		return errors.New("console needs at least 2 rows")
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	for _, dir := range c.Seed.Dirs {
		if err := validateSeedPath(dir); err != nil {
			return err
		}
	}
	for _, file := range c.SeedFiles() {
		if err := validateSeedPath(file); err != nil {
			return err
		}
		if file == "/" {
			return errors.New("seed file cannot be the root directory")
		}
	}

	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// SeedFiles returns the paths of the seed files in name order.
func (c *Config) SeedFiles() []string {
	files := make([]string, 0, len(c.Seed.Files))
	for file := range c.Seed.Files {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

func validateSeedPath(p string) error {
	if !path.IsAbs(p) || path.Clean(p) != p {
		return fmt.Errorf("seed path %q must be absolute and clean", p)
	}
	return nil
}
