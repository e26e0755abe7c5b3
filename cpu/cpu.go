package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"strings"

	"github.com/ezrec/opvm/io"
)

// Channel is an I/O channel interface.
type Channel io.Channel

// Default machine sizing.
const (
	NR_REGS    = 8    // Registers in the register file.
	PC_REG     = 7    // Register used as the program counter.
	IADDR_SIZE = 1024 // Instruction memory cells.
	DADDR_SIZE = 1024 // Data memory cells.
)

// State of the fetch-decode-execute loop.
type State int

const (
	STATE_RUNNING = State(0) // running
	STATE_HALTED  = State(1) // halted
	STATE_FAULTED = State(2) // faulted
)

func (st State) String() string {
	switch st {
	case STATE_RUNNING:
		return "running"
	case STATE_HALTED:
		return "halted"
	case STATE_FAULTED:
		return "faulted"
	}
	return fmt.Sprintf("State(%d)", int(st))
}

// Config sizes the machine.
type Config struct {
	Registers  int // Size of the register file.
	PcRegister int // Index of the program counter register.
	CodeSize   int // Instruction memory capacity.
	DataSize   int // Data memory capacity.

	// FallThrough advances the program counter past a conditional
	// branch whose condition is false. When unset, such a branch is
	// fetched again.
	FallThrough bool
}

// DefaultConfig returns the standard machine sizing.
func DefaultConfig() Config {
	return Config{
		Registers:  NR_REGS,
		PcRegister: PC_REG,
		CodeSize:   IADDR_SIZE,
		DataSize:   DADDR_SIZE,
	}
}

// Validate checks that the sizing describes a usable machine.
func (cfg Config) Validate() error {
	if cfg.Registers < 1 || cfg.PcRegister < 0 || cfg.PcRegister >= cfg.Registers {
		return ErrConfigRegister
	}
	if cfg.CodeSize < 1 || cfg.DataSize < 1 {
		return ErrConfigSize
	}
	return nil
}

// Cpu is the simulation context of the register machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Config Config // Machine sizing.

	Register []int32           // Register file, including the program counter.
	Code     Bank[Instruction] // Instruction memory.
	Data     Bank[int32]       // Data memory.
	State    State             // Loop state.
	Err      error             // Error that stopped the machine, if any.

	Ticks    int           // Instructions executed since reset.
	OpCounts [OP_COUNT]int // Instructions executed, per opcode.

	channel  Channel // IN and OUT stream.
	branched bool    // Set by a branch handler that loaded the pc.
}

var _halt = Instruction{Opcode: OP_HALT}

// NewCpu creates a new CPU with the given sizing.
func NewCpu(config Config) (cpu *Cpu, err error) {
	err = config.Validate()
	if err != nil {
		return
	}

	cpu = &Cpu{
		Config:   config,
		Register: make([]int32, config.Registers),
		Code:     NewBank(config.CodeSize, _halt),
		Data:     NewBank(config.DataSize, int32(0)),
	}

	return
}

// Defines returns the machine sizing as loader equates.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return cpu.Config.Defines()
}

// SetChannel sets the channel used by IN and OUT.
func (cpu *Cpu) SetChannel(channel Channel) {
	cpu.channel = channel
}

// Pc returns the program counter.
func (cpu *Cpu) Pc() int32 {
	return cpu.Register[cpu.Config.PcRegister]
}

// SetPc loads the program counter.
func (cpu *Cpu) SetPc(pc int32) {
	cpu.Register[cpu.Config.PcRegister] = pc
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	var sb strings.Builder

	fmt.Fprintf(&sb, "% 5s: %v\n", "state", cpu.State)
	for n, val := range cpu.Register {
		name := fmt.Sprintf("r%d", n)
		if n == cpu.Config.PcRegister {
			name = "pc"
		}
		fmt.Fprintf(&sb, "% 5s: %d\n", name, val)
	}

	return sb.String()
}

// Reset the CPU state.
// - Zeros the registers and data memory.
// - Fills instruction memory with HALT.
// - Zeros statistics counters.
// - Rewinds the IO channel.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Register)
	cpu.Code.Fill(_halt)
	cpu.Data.Fill(0)
	cpu.State = STATE_RUNNING
	cpu.Err = nil
	cpu.Ticks = 0
	clear(cpu.OpCounts[:])

	if cpu.channel != nil {
		cpu.channel.Rewind()
	}
}

// Load copies a program into instruction memory, starting at address 0.
//
// The register operands of every record are checked against this
// machine's register file, as a program may have been loaded for another.
func (cpu *Cpu) Load(prog *Program) (err error) {
	if len(prog.Records) > cpu.Code.Len() {
		err = ErrProgramTooLarge
		return
	}

	for _, rec := range prog.Records {
		if !cpu.registersValid(rec.Instruction) {
			err = &ErrSyntax{LineNo: rec.LineNo, Word: rec.Instruction.String(), Err: ErrRegisterInvalid}
			return
		}
	}

	for n, rec := range prog.Records {
		cpu.Code.Cells[n] = rec.Instruction
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d instructions", len(prog.Records))
	}

	return
}

// registersValid checks the register operands of code for its class.
func (cpu *Cpu) registersValid(code Instruction) bool {
	valid := func(reg int32) bool {
		return reg >= 0 && int(reg) < len(cpu.Register)
	}

	if !valid(code.A) || !valid(code.B) {
		return false
	}

	return code.Opcode.Class() != CLASS_RR || valid(code.C)
}

// FetchCode fetches the instruction addressed by the program counter.
func (cpu *Cpu) FetchCode() (code Instruction, err error) {
	pc := cpu.Pc()
	code, ok := cpu.Code.Read(int64(pc))
	if !ok {
		err = FAULT_IMEM
	}
	return
}

// Tick executes a single fetch-decode-execute cycle.
//
// ErrHalt is returned once a HALT instruction is fetched. Any other error
// stops the machine; later ticks return the same error.
func (cpu *Cpu) Tick() (err error) {
	switch cpu.State {
	case STATE_HALTED:
		return ErrHalt
	case STATE_FAULTED:
		return cpu.Err
	}

	pc := cpu.Pc()

	code, err := cpu.FetchCode()
	if err != nil {
		err = &ErrFault{Pc: pc, Err: err}
		cpu.stop(err)
		return
	}

	err = cpu.Execute(code)
	if err != nil && err != ErrHalt {
		cpu.stop(err)
	}

	return
}

// stop moves the machine to the faulted state.
func (cpu *Cpu) stop(err error) {
	cpu.State = STATE_FAULTED
	cpu.Err = err

	if cpu.Verbose {
		log.Printf("cpu: %v", err)
	}
}

// Execute executes a single decoded instruction, then advances the program
// counter. HALT stops the machine and returns ErrHalt, leaving the program
// counter as is.
func (cpu *Cpu) Execute(code Instruction) (err error) {
	pc := cpu.Pc()

	if code.Opcode == OP_HALT {
		if cpu.Verbose {
			log.Printf("%03d: %v", pc, code)
		}
		cpu.State = STATE_HALTED
		return ErrHalt
	}

	defer func() {
		if err != nil {
			err = &ErrFault{Pc: pc, Instruction: code, Err: err}
		}
	}()

	if cpu.Verbose {
		log.Printf("%03d: %v", pc, code)
	}

	var handle handler
	if code.Opcode.Valid() {
		handle = _handlers[code.Opcode]
	}
	if handle == nil {
		err = FAULT_NO_INSTRUCTION
		return
	}

	cpu.branched = false

	err = handle(cpu, code)
	if err != nil {
		return
	}

	cpu.Ticks++
	cpu.OpCounts[code.Opcode]++

	switch {
	case !code.Opcode.IsBranch():
		cpu.SetPc(cpu.Pc() + 1)
	case !cpu.branched && cpu.Config.FallThrough:
		cpu.SetPc(cpu.Pc() + 1)
	}

	return
}

// receive reads the next input value.
func (cpu *Cpu) receive() (value int32, err error) {
	if cpu.channel == nil {
		err = ErrChannelInvalid
		return
	}
	return cpu.channel.Receive()
}

// send writes an output value.
func (cpu *Cpu) send(value int32) (err error) {
	if cpu.channel == nil {
		err = ErrChannelInvalid
		return
	}
	err = cpu.channel.Send(value)
	if err != nil {
		err = errors.Join(ErrChannelInvalid, err)
	}
	return
}
