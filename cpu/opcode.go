package cpu

import (
	"fmt"
)

// Opcode is an instruction operation.
type Opcode int

const (
	OP_HALT = Opcode(0)  // HALT
	OP_IN   = Opcode(1)  // IN
	OP_OUT  = Opcode(2)  // OUT
	OP_ADD  = Opcode(3)  // ADD
	OP_SUB  = Opcode(4)  // SUB
	OP_MUL  = Opcode(5)  // MUL
	OP_DIV  = Opcode(6)  // DIV
	OP_LD   = Opcode(7)  // LD
	OP_ST   = Opcode(8)  // ST
	OP_LDA  = Opcode(9)  // LDA
	OP_LDC  = Opcode(10) // LDC
	OP_JLT  = Opcode(11) // JLT
	OP_JLE  = Opcode(12) // JLE
	OP_JGT  = Opcode(13) // JGT
	OP_JGE  = Opcode(14) // JGE
	OP_JEQ  = Opcode(15) // JEQ
	OP_JNE  = Opcode(16) // JNE

	OP_COUNT = 17 // Number of opcodes.
)

// CodeClass is the addressing-mode class of an opcode.
type CodeClass int

const (
	CLASS_RR = CodeClass(0) // register-register
	CLASS_RM = CodeClass(1) // register-memory
	CLASS_RA = CodeClass(2) // register-immediate
)

var _opcodeNames = [OP_COUNT]string{
	"HALT", "IN", "OUT", "ADD", "SUB", "MUL", "DIV",
	"LD", "ST",
	"LDA", "LDC", "JLT", "JLE", "JGT", "JGE", "JEQ", "JNE",
}

var _opcodeMap map[string]Opcode

func init() {
	_opcodeMap = make(map[string]Opcode, OP_COUNT)
	for n, name := range _opcodeNames {
		_opcodeMap[name] = Opcode(n)
	}
}

// LookupOpcode maps a mnemonic to its opcode. The match is exact and case
// sensitive.
func LookupOpcode(name string) (op Opcode, ok bool) {
	op, ok = _opcodeMap[name]
	return
}

// Valid returns true if the opcode is a member of the instruction set.
func (op Opcode) Valid() bool {
	return op >= OP_HALT && op < OP_COUNT
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("Opcode(%d)", int(op))
	}
	return _opcodeNames[op]
}

// Class returns the addressing-mode class of the opcode.
func (op Opcode) Class() CodeClass {
	switch {
	case op < OP_LD:
		return CLASS_RR
	case op < OP_LDA:
		return CLASS_RM
	default:
		return CLASS_RA
	}
}

// IsBranch returns true for the conditional branches, which own the
// program counter update.
func (op Opcode) IsBranch() bool {
	return op >= OP_JLT && op <= OP_JNE
}

func (cc CodeClass) String() string {
	switch cc {
	case CLASS_RR:
		return "RR"
	case CLASS_RM:
		return "RM"
	case CLASS_RA:
		return "RA"
	}
	return fmt.Sprintf("CodeClass(%d)", int(cc))
}

// Instruction is an opcode with its three operands.
//
// A and B are always register indices. C is a register index for the
// register-register class, and a literal otherwise.
type Instruction struct {
	Opcode Opcode
	A      int32
	B      int32
	C      int32
}

// String returns the program text form of the instruction.
func (in Instruction) String() string {
	return fmt.Sprintf("%v %d %d %d", in.Opcode, in.A, in.B, in.C)
}
