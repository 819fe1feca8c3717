// Command ape boots a floppy image or a flat .COM program against the
// real-mode core and runs it against a terminal-backed console and a
// text-mode VGA renderer, until the guest halts, terminates via DOS, or
// the process receives an interrupt signal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MoochMcGee/ape/internal/cpu"
	"github.com/MoochMcGee/ape/internal/frontend"
	"github.com/MoochMcGee/ape/internal/machine"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		floppyPath  = flag.String("floppy", "", "path to a raw floppy image to boot")
		comPath     = flag.String("com", "", "path to a flat .COM program to run")
		dosBaseDir  = flag.String("dos-root", "", "host directory DOS file I/O is sandboxed to (enables INT 21h)")
		pauseOnBoot = flag.Bool("pause", false, "start paused rather than running")
	)
	flag.Parse()

	if (*floppyPath == "") == (*comPath == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -floppy or -com must be given")
		return 1
	}

	tty := frontend.NewTermTTY()
	if err := tty.EnterRawMode(); err != nil {
		fmt.Fprintf(os.Stderr, "entering raw terminal mode: %v\n", err)
		return 1
	}
	defer tty.Close()

	vga := frontend.NewANSIVGA(nil, os.Stdout)

	m := machine.New(machine.Config{
		TTY:         tty,
		VGA:         vga,
		DOSBaseDir:  *dosBaseDir,
		Type:        cpu.I8086,
		PauseOnBoot: *pauseOnBoot,
	})
	vga.Mem = m.Mem

	if *floppyPath != "" {
		floppy, err := frontend.OpenFloppyImage(*floppyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "opening floppy image: %v\n", err)
			return 1
		}
		m.Layer.Floppy = floppy
		if err := m.BootFloppy(floppy.BootSector()); err != nil {
			fmt.Fprintf(os.Stderr, "booting floppy: %v\n", err)
			return 1
		}
	} else {
		program, err := os.ReadFile(*comPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "reading .COM image: %v\n", err)
			return 1
		}
		if err := m.BootCOM(program); err != nil {
			fmt.Fprintf(os.Stderr, "booting .COM image: %v\n", err)
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m.Start()
		for m.CPU.GetState() != cpu.Stopped {
			select {
			case <-ctx.Done():
				m.Stop()
				return nil
			default:
				time.Sleep(5 * time.Millisecond)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	if err := m.CPU.FatalErr(); err != nil {
		fmt.Fprintln(os.Stderr, m.CPU.FatalMessage())
		return 1
	}
	if code, terminated := m.ExitCode(); terminated {
		return int(code)
	}
	return 0
}
