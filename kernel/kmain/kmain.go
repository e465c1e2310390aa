// Package kmain assembles the kernel from its subsystems and runs it.
package kmain

import (
	"io"
	"path"

	"github.com/Mine4x/unsafeOS/config"
	"github.com/Mine4x/unsafeOS/device"
	"github.com/Mine4x/unsafeOS/device/keyboard"
	"github.com/Mine4x/unsafeOS/device/tty"
	"github.com/Mine4x/unsafeOS/device/video/console"
	"github.com/Mine4x/unsafeOS/kernel"
	"github.com/Mine4x/unsafeOS/kernel/cpu"
	"github.com/Mine4x/unsafeOS/kernel/hal"
	"github.com/Mine4x/unsafeOS/kernel/irq"
	"github.com/Mine4x/unsafeOS/kernel/kfmt"
	"github.com/Mine4x/unsafeOS/kernel/ramfs"
	"github.com/Mine4x/unsafeOS/kernel/shell"
	"github.com/Mine4x/unsafeOS/kernel/task"
)

const (
	welcomeDir  = "/welcome"
	welcomeFile = "/welcome/hello.txt"
	welcomeText = "hello! welcome to unsafeOS! this filesystem only runs on your memmory!"
)

var (
	errNoCore     = &kernel.Error{Module: "kmain", Message: "no processor"}
	errNoTerminal = &kernel.Error{Module: "kmain", Message: "no terminal detected"}
)

// Hardware describes the machine the kernel boots on.
type Hardware struct {
	Core *cpu.Core

	// Display receives the console output. A nil Display leaves the
	// machine without a console.
	Display io.Writer

	// Keyboard is the data port of the keyboard controller, if any.
	Keyboard keyboard.DataPort
}

// Kernel holds the state shared by the kernel subsystems.
type Kernel struct {
	Core     *cpu.Core
	IRQ      *irq.Table
	FS       *ramfs.FS
	Bridge   *keyboard.Bridge
	Keys     *keyboard.Registry
	Devices  *hal.Devices
	Executor *task.Executor

	// Terminal is the output surface of the shell and of kfmt.
	Terminal tty.Device

	// WorkingDir is the shell's current working directory.
	WorkingDir *shell.WorkingDir
	Shell      *shell.Shell

	cfg *config.Config
}

// Boot detects the hardware, builds the kernel state and spawns the
// keyboard, shell and filesystem tasks. The returned kernel is started with
// Run. A nil cfg selects the default configuration.
func Boot(cfg *config.Config, hw Hardware) (*Kernel, *kernel.Error) {
	if hw.Core == nil {
		return nil, errNoCore
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	k := &Kernel{
		Core:     hw.Core,
		IRQ:      new(irq.Table),
		FS:       ramfs.New(),
		Bridge:   keyboard.NewBridge(cfg.QueueCapacity),
		Keys:     new(keyboard.Registry),
		Executor: task.NewExecutor(hw.Core, cfg.WakeQueueCapacity),
		cfg:      cfg,
	}
	k.IRQ.Install(hw.Core)

	k.Devices = hal.DetectHardware(k.drivers(hw))
	if k.Devices.TTY == nil {
		return nil, errNoTerminal
	}

	k.Terminal = k.Devices.TTY
	k.WorkingDir = shell.NewWorkingDir("/")
	k.Shell = shell.New(k.Terminal, k.FS, k.WorkingDir, cfg.Prompt)

	k.Executor.Spawn(keyboard.NewTask(k.Bridge, k.Keys))
	k.Executor.Spawn(task.Func(k.initShell))
	k.Executor.Spawn(task.Func(k.initFS))

	return k, nil
}

// Run executes the kernel tasks. The keyboard task never completes, so Run
// only returns if the keyboard stream could not be obtained.
func (k *Kernel) Run() {
	k.Executor.Run()
}

// drivers returns the driver list probed at boot.
func (k *Kernel) drivers(hw Hardware) device.DriverInfoList {
	cons := k.cfg.Console

	return device.DriverInfoList{
		{
			Order: device.DetectOrderConsole,
			Probe: func() device.Driver {
				if hw.Display == nil {
					return nil
				}
				return console.NewANSI(hw.Display, cons.Width, cons.Height)
			},
		},
		{
			Order: device.DetectOrderTTY,
			Probe: func() device.Driver {
				return tty.NewVT(hw.Core, cons.TabWidth, cons.Scrollback)
			},
		},
		{
			Order: device.DetectOrderInput,
			Probe: keyboard.Probe(hw.Keyboard, k.IRQ, k.Bridge),
		},
	}
}

// initShell clears the terminal, prints the first prompt and routes keys to
// the line editor.
func (k *Kernel) initShell(_ *task.Context) task.Poll {
	k.Shell.Start()
	k.Keys.Register(k.Shell.HandleKey)
	return task.Ready
}

// initFS creates the welcome file and the configured seed content.
func (k *Kernel) initFS(_ *task.Context) task.Poll {
	k.seedDir(welcomeDir)
	k.seedFile(welcomeFile, welcomeText)

	for _, dir := range k.cfg.Seed.Dirs {
		k.seedDir(dir)
	}
	for _, file := range k.cfg.SeedFiles() {
		k.seedFile(file, k.cfg.Seed.Files[file])
	}

	return task.Ready
}

func (k *Kernel) seedDir(dir string) bool {
	if err := k.FS.CreateDirAll(dir); err != nil {
		kfmt.Printf("[kmain] seeding %s failed: %s\n", dir, err.Error())
		return false
	}
	return true
}

func (k *Kernel) seedFile(file, content string) {
	if !k.seedDir(path.Dir(file)) {
		return
	}
	if err := k.FS.Write(file, []byte(content)); err != nil {
		kfmt.Printf("[kmain] seeding %s failed: %s\n", file, err.Error())
	}
}
