package cpu

import (
	"errors"

	"github.com/ezrec/opvm/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalt           = errors.New(f("halt"))
	ErrChannelInvalid = errors.New(f("channel invalid"))
	ErrConfigRegister = errors.New(f("register file must hold the program counter"))
	ErrConfigSize     = errors.New(f("memory size must be positive"))

	// Loader errors
	ErrOpcodeInvalid   = errors.New(f("no such opcode"))
	ErrRegisterInvalid = errors.New(f("no such register"))
	ErrOperandMissing  = errors.New(f("operand missing"))
	ErrTokenTooLong    = errors.New(f("token too long"))
	ErrLineTooLong     = errors.New(f("line too long"))
	ErrProgramTooLarge = errors.New(f("program exceeds instruction memory"))
)

// Fault is the outcome of executing a single instruction.
type Fault int

const (
	FAULT_NONE           = Fault(0) // okay
	FAULT_IMEM           = Fault(1) // instruction memory access error
	FAULT_DMEM           = Fault(2) // data memory access error
	FAULT_DIVIDE_ZERO    = Fault(3) // divided by zero
	FAULT_NO_INSTRUCTION = Fault(4) // no such instruction
)

func (ft Fault) Error() string {
	switch ft {
	case FAULT_NONE:
		return f("okay")
	case FAULT_IMEM:
		return f("instruction memory access error")
	case FAULT_DMEM:
		return f("data memory access error")
	case FAULT_DIVIDE_ZERO:
		return f("divided by zero")
	case FAULT_NO_INSTRUCTION:
		return f("no such instruction")
	}
	return f("fault %d", int(ft))
}

// ErrFault locates an execution error at the instruction that raised it.
type ErrFault struct {
	Pc          int32
	Instruction Instruction
	Err         error
}

func (err *ErrFault) Error() string {
	return f("pc %d '%v' %v", err.Pc, err.Instruction, err.Err)
}

func (err *ErrFault) Unwrap() error {
	return err.Err
}

// ErrSyntax locates a load error in the program text.
type ErrSyntax struct {
	LineNo int
	Word   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Word, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
