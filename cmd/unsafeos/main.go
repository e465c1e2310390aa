// Command unsafeos boots the kernel on a hosted machine. The host terminal is
// the machine's screen and keyboard: stdin is switched to raw mode and every
// key press is turned into PS/2 scancodes for the emulated i8042 controller,
// while the kernel console renders to stdout.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/Mine4x/unsafeOS/config"
	"github.com/Mine4x/unsafeOS/device/keyboard"
	"github.com/Mine4x/unsafeOS/kernel/cpu"
	"github.com/Mine4x/unsafeOS/kernel/kfmt"
	"github.com/Mine4x/unsafeOS/kernel/kmain"
	"github.com/Mine4x/unsafeOS/kernel/ramfs/fusefs"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

var errKernelPanic = errors.New("kernel panic")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	logger, flushLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer flushLog()

	stdin, stdout := int(os.Stdin.Fd()), int(os.Stdout.Fd())
	if term.IsTerminal(stdout) {
		fitConsole(cfg, stdout)
	}

	if term.IsTerminal(stdin) {
		oldState, err := term.MakeRaw(stdin)
		if err != nil {
			return fmt.Errorf("switching terminal to raw mode: %w", err)
		}
		defer term.Restore(stdin, oldState)
	}

	logger.Info("booting",
		"config", cfg.Path(),
		"console", fmt.Sprintf("%dx%d", cfg.Console.Width, cfg.Console.Height),
		"queue_capacity", cfg.QueueCapacity,
	)

	halted := make(chan struct{})
	kfmt.SetHaltFn(func() {
		close(halted)
		select {}
	})

	core := cpu.NewCore()
	ctrl := keyboard.NewController(core)

	k, kerr := kmain.Boot(cfg, kmain.Hardware{Core: core, Display: os.Stdout, Keyboard: ctrl})
	if kerr != nil {
		return fmt.Errorf("boot: %w", kerr)
	}

	if cfg.Mount != "" {
		server, err := fusefs.Mount(fusefs.Options{Mountpoint: cfg.Mount, FS: k.FS, Logger: logger})
		if err != nil {
			return err
		}
		defer func() {
			if err := server.Unmount(); err != nil {
				logger.Error("unmounting ramfs", "mountpoint", cfg.Mount, "error", err)
			}
		}()
	}

	exited := make(chan struct{})
	go func() {
		k.Run()
		close(exited)
	}()

	input := make(chan []byte)
	go readInput(os.Stdin, input, logger)

	var decoder inputDecoder
	for {
		select {
		case <-halted:
			return errKernelPanic
		case <-exited:
			logger.Info("kernel exited")
			return nil
		case data, ok := <-input:
			if !ok {
				return nil
			}

			scancodes, quit := decoder.Translate(data)
			ctrl.Feed(scancodes...)
			if quit {
				logger.Info("shutting down",
					"dropped_scancodes", k.Bridge.Dropped(),
					"spurious_interrupts", k.IRQ.Spurious(),
				)
				return nil
			}
		}
	}
}

// fitConsole shrinks the configured console to the size of the terminal at
// fd.
func fitConsole(cfg *config.Config, fd int) {
	width, height, err := term.GetSize(fd)
	if err != nil || width <= 0 || height <= 1 {
		return
	}

	if uint32(width) < cfg.Console.Width {
		cfg.Console.Width = uint32(width)
	}
	if uint32(height) < cfg.Console.Height {
		cfg.Console.Height = uint32(height)
	}
}

// readInput sends each chunk read from r to out and closes out at EOF.
func readInput(r io.Reader, out chan<- []byte, logger *slog.Logger) {
	defer close(out)

	buf := make([]byte, 256)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			out <- append([]byte(nil), buf[:n]...)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Error("reading keyboard input", "error", err)
			}
			return
		}
	}
}
