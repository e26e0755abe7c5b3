// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator drives a cpu.Cpu from loaded program text to HALT.
package emulator

import (
	"errors"
	"io"
	"iter"
	"log"

	"github.com/ezrec/opvm/cpu"
	opio "github.com/ezrec/opvm/io"
	"github.com/ezrec/opvm/trace"
)

// Tracer receives one step per executed instruction.
type Tracer interface {
	Record(step trace.Step) error
}

// Emulator state. CPU + program + IO tape.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.

	Tape opio.Tape // IN and OUT channel.

	MaxSteps int    // If non-zero, Run stops after this many instructions.
	Tracer   Tracer // If set, receives every executed instruction.

	steps int
}

// NewEmulator creates a new emulator for the given machine sizing.
func NewEmulator(config cpu.Config) (emu *Emulator, err error) {
	cp, err := cpu.NewCpu(config)
	if err != nil {
		return
	}

	emu = &Emulator{
		Cpu:     cp,
		Program: &cpu.Program{},
	}

	emu.Cpu.SetChannel(&emu.Tape)

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return emu.Cpu.Defines()
}

// Parse loads program text for this emulator's machine, and makes it the
// current program.
func (emu *Emulator) Parse(input io.Reader) (err error) {
	ld := &cpu.Loader{
		Verbose: emu.Verbose,
		Config:  emu.Cpu.Config,
	}
	for equ, value := range emu.Defines() {
		ld.Predefine(equ, value)
	}

	prog, err := ld.Parse(input)
	if err != nil {
		return
	}

	emu.Program = prog
	return
}

// Close the emulator, and its tracer if it is closable.
func (emu *Emulator) Close() (err error) {
	if closer, ok := emu.Tracer.(io.Closer); ok {
		err = closer.Close()
	}

	return
}

// Reset the machine, and load the current program.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.steps = 0

	emu.Cpu.Reset()

	err = emu.Cpu.Load(emu.Program)
	return
}

// Steps returns the number of ticks since the last reset.
func (emu *Emulator) Steps() int {
	return emu.steps
}

// LineNo returns the current line number for the executing instruction.
func (emu *Emulator) LineNo() int {
	rec := emu.Program.Debug(emu.Cpu.Pc())
	if rec == nil {
		return 0
	}
	return rec.LineNo
}

// Tick performs a single tick of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc()
	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	code, fetch_err := emu.Cpu.FetchCode()

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalt) {
		err = nil
		done = true
		return
	}

	emu.steps++

	if emu.Tracer != nil && fetch_err == nil {
		step := trace.Step{
			Tick:   int64(emu.steps),
			Pc:     int64(pc),
			LineNo: int64(lineno),
			Opcode: code.Opcode.String(),
			A:      int64(code.A),
			B:      int64(code.B),
			C:      int64(code.C),
			Status: trace.STATUS_OK,
		}
		if err != nil {
			step.Status = trace.STATUS_FAULT
		}
		trace_err := emu.Tracer.Record(step)
		if trace_err != nil && err == nil {
			err = trace_err
		}
	}

	return
}

// Run ticks the emulator until HALT, an error, or the step limit.
func (emu *Emulator) Run() (err error) {
	for {
		if emu.MaxSteps > 0 && emu.steps >= emu.MaxSteps {
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: ErrStepLimit}
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			break
		}
	}

	if emu.Verbose {
		log.Printf("emulator: %v instructions", emu.Cpu.Ticks)
		for op, count := range emu.Cpu.OpCounts {
			if count != 0 {
				log.Printf("emulator: %v: %v", cpu.Opcode(op), count)
			}
		}
	}

	return
}
