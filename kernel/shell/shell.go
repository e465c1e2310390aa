// Package shell implements the line-mode command shell that runs on the
// kernel terminal.
package shell

import (
	"io"
	"strings"
	"unicode/utf8"

	"github.com/Mine4x/unsafeOS/device/keyboard"
	"github.com/Mine4x/unsafeOS/kernel/kfmt"
	"github.com/Mine4x/unsafeOS/kernel/ramfs"
)

// DefaultPrompt is printed in front of every input line.
const DefaultPrompt = "$ "

// Terminal is the output surface of the shell.
type Terminal interface {
	io.Writer

	// Clear blanks the terminal and moves the cursor to the top-left
	// corner.
	Clear()
}

// Command is an entry of the shell's command table.
type Command struct {
	Name        string
	Usage       string
	Description string

	// Run executes the command. args does not include the command name.
	Run func(sh *Shell, args []string)
}

// Shell reads keys from the keyboard, echoes them to the terminal and runs a
// command whenever enter is pressed.
type Shell struct {
	term     Terminal
	fs       *ramfs.FS
	cwd      *WorkingDir
	prompt   string
	commands []Command

	// line holds the input typed since the last prompt.
	line []rune
}

// New returns a shell that runs the built-in commands against fs.
func New(term Terminal, fs *ramfs.FS, cwd *WorkingDir, prompt string) *Shell {
	if prompt == "" {
		prompt = DefaultPrompt
	}
	if cwd == nil {
		cwd = NewWorkingDir("/")
	}

	return &Shell{
		term:     term,
		fs:       fs,
		cwd:      cwd,
		prompt:   prompt,
		commands: builtinCommands(),
	}
}

// Commands returns the command table.
func (sh *Shell) Commands() []Command {
	return sh.commands
}

// FS returns the filesystem the shell operates on.
func (sh *Shell) FS() *ramfs.FS {
	return sh.fs
}

// WorkingDir returns the shell's current working directory.
func (sh *Shell) WorkingDir() *WorkingDir {
	return sh.cwd
}

// Resolve turns p into an absolute path relative to the working directory.
func (sh *Shell) Resolve(p string) string {
	return Resolve(sh.cwd.Get(), p)
}

// Printf writes formatted output to the terminal.
func (sh *Shell) Printf(format string, args ...interface{}) {
	kfmt.Fprintf(sh.term, format, args...)
}

// Start clears the terminal and prints the first prompt.
func (sh *Shell) Start() {
	sh.term.Clear()
	sh.Printf("%s", sh.prompt)
}

// Input returns the text typed since the last prompt.
func (sh *Shell) Input() string {
	return string(sh.line)
}

// HandleKey implements the line editor. It is registered as a keyboard
// callback.
func (sh *Shell) HandleKey(key keyboard.DecodedKey) {
	if key.Raw {
		return
	}

	switch r := key.Rune; {
	case r == '\n':
		sh.Printf("\n")
		sh.Exec(string(sh.line))
		sh.line = sh.line[:0]
		sh.Printf("%s", sh.prompt)
	case r == 0x08 || r == 0x7f:
		if len(sh.line) != 0 {
			sh.line = sh.line[:len(sh.line)-1]
			sh.Printf("\b")
		}
	case r < 0x20 || r == utf8.RuneError:
		// Other control characters are not part of the line.
	default:
		sh.line = append(sh.line, r)
		sh.Printf("%c", r)
	}
}

// Exec runs a command line. The first whitespace-separated token selects the
// command and the remaining ones are passed to it as arguments.
func (sh *Shell) Exec(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	name, args := fields[0], fields[1:]
	if name == "help" {
		sh.help()
		return
	}

	for _, cmd := range sh.commands {
		if cmd.Name == name {
			cmd.Run(sh, args)
			return
		}
	}

	sh.Printf("Unknown command: %s\n", name)
}

func (sh *Shell) help() {
	sh.Printf("-- help list --\n")
	for _, cmd := range sh.commands {
		sh.Printf("-- %s --\nUSAGE: %s\nDESCRIPTION: %s\n", cmd.Name, cmd.Usage, cmd.Description)
	}
}
