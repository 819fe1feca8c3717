package cpu

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MoochMcGee/ape/internal/memory"
)

// State is the CPU's run state, matching the original implementation's
// three-state model rather than a simple running/stopped bool.
type State uint8

const (
	Stopped State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// StateChangedFunc is invoked whenever the CPU's observable state changes.
// It is always called outside any lock the CPU holds, so a callback is
// free to call back into the CPU (e.g. to read registers) without risking
// deadlock.
type StateChangedFunc func(State)

// CPU owns one 8086-class register file, a reference to the machine's
// memory, and the cooperative execution loop that drives Decoder and
// Executor across it. Tick decodes and executes exactly one instruction —
// or, for a string primitive under a repetition prefix, exactly one
// element of that repetition — which is the loop's only unit of
// suspension.
type CPU struct {
	Regs *Registers
	Mem  *memory.Memory
	Exec *Executor
	Type Type

	// PauseOnBoot, when set before Start, makes the machine come up in
	// Paused rather than Running so a debugger can install breakpoints
	// before the first instruction executes.
	PauseOnBoot bool

	requested atomic.Uint32 // State the run loop should move toward
	current   atomic.Uint32 // State last reported to callbacks
	alive     atomic.Bool   // true while the run goroutine is active

	fatalMu  sync.Mutex
	fatalErr error

	pending     Instruction
	havePending bool

	cbMu       sync.Mutex
	callbacks  map[uint64]StateChangedFunc
	nextHandle uint64
}

// NewCPU constructs a CPU wired to mem and, when ic is non-nil, to an
// interrupt layer consulted before any software interrupt falls through to
// the raw vector-table mechanism.
func NewCPU(mem *memory.Memory, ic InterruptCaller, t Type) *CPU {
	regs := &Registers{}
	c := &CPU{
		Regs:      regs,
		Mem:       mem,
		Exec:      NewExecutor(regs, mem, ic),
		Type:      t,
		callbacks: make(map[uint64]StateChangedFunc),
	}
	c.requested.Store(uint32(Stopped))
	c.current.Store(uint32(Stopped))
	return c
}

// RegisterStateChangedCallback adds fn to the set notified on every state
// transition and returns an opaque handle for later removal. Using a
// handle rather than comparing function identity lets the same closure be
// registered more than once.
func (c *CPU) RegisterStateChangedCallback(fn StateChangedFunc) uint64 {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	c.nextHandle++
	handle := c.nextHandle
	c.callbacks[handle] = fn
	return handle
}

// UnregisterStateChangedCallback removes a callback previously added by
// RegisterStateChangedCallback.
func (c *CPU) UnregisterStateChangedCallback(handle uint64) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()
	delete(c.callbacks, handle)
}

func (c *CPU) notify(s State) {
	c.cbMu.Lock()
	fns := make([]StateChangedFunc, 0, len(c.callbacks))
	for _, fn := range c.callbacks {
		fns = append(fns, fn)
	}
	c.cbMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (c *CPU) setCurrent(s State) {
	if State(c.current.Swap(uint32(s))) != s {
		c.notify(s)
	}
}

// GetState reports the CPU's last-observed state.
func (c *CPU) GetState() State { return State(c.current.Load()) }

// IsRunning and IsPaused are narrow conveniences over GetState.
func (c *CPU) IsRunning() bool { return c.GetState() == Running }
func (c *CPU) IsPaused() bool  { return c.GetState() == Paused }

// FatalErr returns the error that stopped the CPU, or nil if it stopped
// cleanly (Stop was called, or HLT executed).
func (c *CPU) FatalErr() error {
	c.fatalMu.Lock()
	defer c.fatalMu.Unlock()
	return c.fatalErr
}

// FatalMessage formats the fatal-error report a front end would print,
// including the shadow CS:IP of the faulting instruction.
func (c *CPU) FatalMessage() string {
	err := c.FatalErr()
	if err == nil {
		return ""
	}
	return fmt.Sprintf("A fatal error occurred and emulation cannot continue: %v (at %04X:%04X)",
		err, c.Regs.LastCS, c.Regs.LastIP)
}

// Start begins running the CPU on its own goroutine, decoding and
// executing instructions until Stop is called, a fatal error occurs, or
// HLT executes. Calling Start while already running has no effect.
// GetState reports Running (or Paused, under PauseOnBoot) before Start
// returns; the callbacks for that first transition run on the caller's
// goroutine.
func (c *CPU) Start() {
	if !c.alive.CompareAndSwap(false, true) {
		return
	}
	initial := Running
	if c.PauseOnBoot {
		initial = Paused
	}
	c.requested.Store(uint32(initial))
	c.setCurrent(initial)
	go c.run()
}

// Stop requests that the run loop exit at its next suspension point.
func (c *CPU) Stop() {
	c.requested.Store(uint32(Stopped))
}

// SetPaused toggles between Running and Paused. It has no effect once the
// CPU has stopped.
func (c *CPU) SetPaused(paused bool) {
	if State(c.requested.Load()) == Stopped {
		return
	}
	if paused {
		c.requested.Store(uint32(Paused))
	} else {
		c.requested.Store(uint32(Running))
	}
}

func (c *CPU) run() {
	defer c.alive.Store(false)

	for {
		want := State(c.requested.Load())
		switch want {
		case Stopped:
			c.setCurrent(Stopped)
			return
		case Paused:
			c.setCurrent(Paused)
			time.Sleep(time.Millisecond)
			continue
		}

		c.setCurrent(Running)
		if err := c.Tick(); err != nil {
			c.fatalMu.Lock()
			c.fatalErr = err
			c.fatalMu.Unlock()
			c.requested.Store(uint32(Stopped))
			c.setCurrent(Stopped)
			return
		}
		if c.Exec.Halted {
			c.requested.Store(uint32(Stopped))
			c.setCurrent(Stopped)
			return
		}
	}
}

// Tick decodes and executes exactly one unit of work: one full instruction,
// or one element of a string primitive's repetition when a prior Tick left
// one in progress. LAST_CS/LAST_IP are updated before every fresh decode,
// not only on fault, so a live disassembly view can track execution in
// real time and a decode fault reports the address it failed at.
func (c *CPU) Tick() error {
	var inst Instruction

	if c.havePending {
		inst = c.pending
	} else {
		cs, ip := c.Regs.CS(), c.Regs.IP()
		c.Regs.LastCS, c.Regs.LastIP = cs, ip
		decoded, err := Decode(c.Mem, cs, ip)
		if err != nil {
			return err
		}
		c.Regs.SetIP(ip + uint16(decoded.Length))
		inst = decoded
	}

	done, err := c.Exec.Execute(inst)
	if err != nil {
		return err
	}
	if !done {
		c.pending = inst
		c.havePending = true
		return nil
	}
	c.havePending = false
	return nil
}

// Reset restores the CPU to power-on state: zeroed registers, no pending
// string-op repetition, no fatal error, stopped.
func (c *CPU) Reset() {
	c.Regs.Reset()
	c.Exec.Halted = false
	c.havePending = false
	c.fatalMu.Lock()
	c.fatalErr = nil
	c.fatalMu.Unlock()
	c.requested.Store(uint32(Stopped))
	c.current.Store(uint32(Stopped))
}
