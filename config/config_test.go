package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "unsafeos.yaml")
	if err := os.WriteFile(file, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}

	if exp := DefaultConfig(); !reflect.DeepEqual(cfg, exp) {
		t.Fatalf("expected default config %+v; got %+v", exp, cfg)
	}

	if level, _ := cfg.Level(); level != slog.LevelInfo {
		t.Fatalf("expected default level info; got %v", level)
	}
}

func TestLoadFileAndFlags(t *testing.T) {
	file := writeConfig(t, `
queue_capacity: 16
prompt: "> "
log_level: debug
console:
  width: 100
seed:
  dirs: [/etc, /home/user]
  files:
    /etc/motd: hi
    /a.txt: first
`)

	cfg, err := Load([]string{"--config", file, "--queue-capacity=8", "-m", "/mnt/ram"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Path() != file {
		t.Errorf("expected config path %q; got %q", file, cfg.Path())
	}
	if cfg.QueueCapacity != 8 {
		t.Errorf("expected the flag to override queue_capacity; got %d", cfg.QueueCapacity)
	}
	if cfg.WakeQueueCapacity != 100 {
		t.Errorf("expected default wake_queue_capacity; got %d", cfg.WakeQueueCapacity)
	}
	if cfg.Prompt != "> " {
		t.Errorf("expected prompt from file; got %q", cfg.Prompt)
	}
	if cfg.Mount != "/mnt/ram" {
		t.Errorf("expected mount from flag; got %q", cfg.Mount)
	}
	if cfg.Console.Width != 100 || cfg.Console.Height != 25 || cfg.Console.TabWidth != 4 {
		t.Errorf("expected console width from file and defaults otherwise; got %+v", cfg.Console)
	}
	if level, _ := cfg.Level(); level != slog.LevelDebug {
		t.Errorf("expected level debug; got %v", level)
	}
	if exp := []string{"/etc", "/home/user"}; !reflect.DeepEqual(cfg.Seed.Dirs, exp) {
		t.Errorf("expected seed dirs %v; got %v", exp, cfg.Seed.Dirs)
	}
	if exp := []string{"/a.txt", "/etc/motd"}; !reflect.DeepEqual(cfg.SeedFiles(), exp) {
		t.Errorf("expected sorted seed files %v; got %v", exp, cfg.SeedFiles())
	}
}

func TestLoadErrors(t *testing.T) {
	badYAML := writeConfig(t, "queue_capacity: [1\n")
	invalid := writeConfig(t, "wake_queue_capacity: 0\n")

	specs := []struct {
		args   []string
		expErr string
	}{
		{[]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, "reading config"},
		{[]string{"--config", badYAML}, "parsing config"},
		{[]string{"--config", invalid}, "wake_queue_capacity must be positive"},
		{[]string{"--queue-capacity", "0"}, "queue_capacity must be positive"},
		{[]string{"--log-level", "loud"}, "log_level"},
		{[]string{"--height", "1"}, "at least 2 rows"},
		{[]string{"--width", "0"}, "console size must be positive"},
		{[]string{"--bogus"}, "unknown flag"},
	}

	for specIndex, spec := range specs {
		_, err := Load(spec.args)
		if err == nil || !strings.Contains(err.Error(), spec.expErr) {
			t.Errorf("[spec %d] expected error containing %q; got %v", specIndex, spec.expErr, err)
		}
	}
}

func TestLoadHelp(t *testing.T) {
	if _, err := Load([]string{"--help"}); !errors.Is(err, pflag.ErrHelp) {
		t.Fatalf("expected pflag.ErrHelp; got %v", err)
	}
}

func TestValidateSeedPaths(t *testing.T) {
	specs := []struct {
		seed  Seed
		valid bool
	}{
		{Seed{Dirs: []string{"/a", "/a/b"}}, true},
		{Seed{Files: map[string]string{"/a/b.txt": "x"}}, true},
		{Seed{Dirs: []string{"relative"}}, false},
		{Seed{Dirs: []string{"/a/../b"}}, false},
		{Seed{Dirs: []string{"/a/"}}, false},
		{Seed{Files: map[string]string{"/": "x"}}, false},
		{Seed{Files: map[string]string{"x.txt": "x"}}, false},
	}

	for specIndex, spec := range specs {
		cfg := DefaultConfig()
		cfg.Seed = spec.seed

		if err := cfg.Validate(); (err == nil) != spec.valid {
			t.Errorf("[spec %d] expected valid=%t; got error %v", specIndex, spec.valid, err)
		}
	}
}
