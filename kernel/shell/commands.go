package shell

import (
	"strings"
	"unicode/utf8"
)

func builtinCommands() []Command {
	return []Command{
		{Name: "hello", Usage: "hello [name]", Description: "displays a hello message for testing", Run: runHello},
		{Name: "clear", Usage: "clear", Description: "clears the terminal", Run: runClear},
		{Name: "cat", Usage: "cat <path>", Description: "displays the content of a file", Run: runCat},
		{Name: "mkdir", Usage: "mkdir <path>...", Description: "creates one or more directories, including missing parents", Run: runMkdir},
		{Name: "touch", Usage: `touch <path> ["content"]`, Description: "creates or overwrites a file, optionally with content", Run: runTouch},
		{Name: "ls", Usage: "ls [path]", Description: "lists directory contents", Run: runLs},
		{Name: "cd", Usage: "cd [path]", Description: "changes the current working directory", Run: runCd},
		{Name: "pwd", Usage: "pwd", Description: "prints the current working directory", Run: runPwd},
	}
}

func runHello(sh *Shell, args []string) {
	if len(args) == 0 {
		sh.Printf("Hi :)\n")
		return
	}
	sh.Printf("Hi %s :)\n", args[0])
}

func runClear(sh *Shell, _ []string) {
	sh.term.Clear()
}

func runCat(sh *Shell, args []string) {
	if len(args) != 1 {
		sh.Printf("USAGE: cat <path>\n")
		return
	}

	data, err := sh.fs.Read(sh.Resolve(args[0]))
	if err != nil {
		sh.Printf("cat: %s\n", err)
		return
	}

	if !utf8.Valid(data) {
		sh.Printf("cat: %s: invalid UTF-8\n", args[0])
		return
	}

	if len(data) != 0 && data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	sh.Printf("%s", data)
}

func runMkdir(sh *Shell, args []string) {
	if len(args) == 0 {
		sh.Printf("USAGE: mkdir <path>...\n")
		return
	}

	for _, arg := range args {
		if err := sh.fs.CreateDirAll(sh.Resolve(arg)); err != nil {
			sh.Printf("mkdir: %s: %s\n", arg, err)
		}
	}
}

func runTouch(sh *Shell, args []string) {
	if len(args) == 0 {
		sh.Printf("USAGE: touch <path> [\"content\"]\n")
		return
	}

	content := unquote(strings.Join(args[1:], " "))
	if err := sh.fs.Write(sh.Resolve(args[0]), []byte(content)); err != nil {
		sh.Printf("touch: %s: %s\n", args[0], err)
	}
}

// unquote strips one pair of matching single or double quotes surrounding s.
func unquote(s string) string {
	if len(s) >= 2 {
		if first, last := s[0], s[len(s)-1]; first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func runLs(sh *Shell, args []string) {
	dir := sh.cwd.Get()
	if len(args) != 0 {
		dir = sh.Resolve(args[0])
	}

	entries, err := sh.fs.ListDir(dir)
	if err != nil {
		sh.Printf("ls: %s: %s\n", dir, err)
		return
	}

	if len(entries) == 0 {
		sh.Printf("(empty directory)\n")
		return
	}

	for _, entry := range entries {
		sh.Printf("%s\n", entry)
	}
}

func runCd(sh *Shell, args []string) {
	target := "/"
	if len(args) != 0 {
		target = args[0]
	}

	dir := sh.Resolve(target)
	if info, err := sh.fs.Stat(dir); err != nil || !info.IsDir() {
		sh.Printf("cd: %s: No such directory\n", target)
		return
	}

	sh.cwd.Set(dir)
}

func runPwd(sh *Shell, _ []string) {
	sh.Printf("%s\n", sh.cwd.Get())
}
