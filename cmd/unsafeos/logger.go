package main

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Mine4x/unsafeOS/config"
	"golang.org/x/term"
)

// newLogger creates the host logger. Records go to cfg.LogFile as JSON when
// set. Otherwise they go to stderr: as text when stderr is a terminal, as
// JSON when it is piped. Since the kernel console owns the terminal while
// the machine runs, terminal records are held back until the returned flush
// function is called after the terminal has been restored.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	level, err := cfg.Level()
	if err != nil {
		return nil, nil, err
	}
	options := &slog.HandlerOptions{Level: level}

	if cfg.LogFile != "" {
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		return slog.New(slog.NewJSONHandler(file, options)), func() { file.Close() }, nil
	}

	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return slog.New(slog.NewJSONHandler(os.Stderr, options)), func() {}, nil
	}

	held := new(bytes.Buffer)
	flush := func() { _, _ = io.Copy(os.Stderr, held) }
	return slog.New(slog.NewTextHandler(held, options)), flush, nil
}
