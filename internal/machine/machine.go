// Package machine wires the memory, CPU, and interrupt layer together into
// the single control surface a front end drives: boot an image, start and
// stop execution, and observe why it stopped.
package machine

import (
	"time"

	"github.com/MoochMcGee/ape/internal/backend"
	"github.com/MoochMcGee/ape/internal/boot"
	"github.com/MoochMcGee/ape/internal/cpu"
	"github.com/MoochMcGee/ape/internal/interrupt"
	"github.com/MoochMcGee/ape/internal/memory"
)

// pollInterval is how often the watchdog goroutine checks the interrupt
// layer's Terminated flag while the CPU is running. The CPU itself has no
// notion of a guest-requested exit; Machine is what reconciles the two.
const pollInterval = 2 * time.Millisecond

// Machine owns one emulated PC: its memory, CPU, and interrupt services,
// plus the backends the interrupt layer reaches out to for I/O.
type Machine struct {
	Mem    *memory.Memory
	CPU    *cpu.CPU
	Layer  *interrupt.Layer

	stopWatch chan struct{}
}

// Config collects the backends and options New needs. Any backend left nil
// is simply unavailable to the interrupt layer's corresponding BIOS
// service, matching running headless or diskless.
type Config struct {
	TTY         backend.TTYBackend
	VGA         backend.VGABackend
	Floppy      backend.FloppyDrive
	DOSBaseDir  string // non-empty enables INT 21h emulation, sandboxed to this directory
	Type        cpu.Type
	PauseOnBoot bool
}

// New constructs a Machine with fresh memory and a CPU wired to an
// interrupt layer built from cfg's backends. The CPU is not started; call
// BootFloppy or BootCOM and then Start.
func New(cfg Config) *Machine {
	mem := memory.New()
	layer := interrupt.NewLayer(cfg.TTY, cfg.VGA, cfg.Floppy, cfg.DOSBaseDir)
	c := cpu.NewCPU(mem, layer, cfg.Type)
	c.PauseOnBoot = cfg.PauseOnBoot
	return &Machine{Mem: mem, CPU: c, Layer: layer}
}

// BootFloppy resets the machine and loads bootSector at 0x7C00, ready to
// Start.
func (m *Machine) BootFloppy(bootSector []byte) error {
	m.CPU.Reset()
	m.Layer.Terminated = false
	return boot.BootFloppy(m.Mem, m.CPU.Regs, bootSector)
}

// BootCOM resets the machine and loads program as a flat .COM image, ready
// to Start.
func (m *Machine) BootCOM(program []byte) error {
	m.CPU.Reset()
	m.Layer.Terminated = false
	return boot.BootCOM(m.Mem, m.CPU.Regs, program)
}

// Start runs the CPU and, when DOS emulation is enabled, a watchdog
// goroutine that stops the CPU as soon as the guest issues INT 21h
// AH=0x4C (terminate). Without DOS emulation (an empty DOSBaseDir) no
// watchdog is started.
func (m *Machine) Start() {
	m.CPU.Start()
	if !m.Layer.SimulateMSDOS {
		return
	}
	m.stopWatch = make(chan struct{})
	go m.watchForExit()
}

func (m *Machine) watchForExit() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopWatch:
			return
		case <-ticker.C:
			if m.Layer.Terminated {
				m.CPU.Stop()
				return
			}
			if m.CPU.GetState() == cpu.Stopped {
				return
			}
		}
	}
}

// Stop halts the CPU and its watchdog, if running.
func (m *Machine) Stop() {
	m.CPU.Stop()
	if m.stopWatch != nil {
		close(m.stopWatch)
		m.stopWatch = nil
	}
}

// ExitCode reports the guest's requested exit code if the machine stopped
// via INT 21h AH=0x4C, and whether that happened at all.
func (m *Machine) ExitCode() (code byte, terminated bool) {
	return m.Layer.ExitCode, m.Layer.Terminated
}
