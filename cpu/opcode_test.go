package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpcodeClass(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		class  CodeClass
		branch bool
	}){
		{"HALT", CLASS_RR, false},
		{"IN", CLASS_RR, false},
		{"OUT", CLASS_RR, false},
		{"ADD", CLASS_RR, false},
		{"SUB", CLASS_RR, false},
		{"MUL", CLASS_RR, false},
		{"DIV", CLASS_RR, false},
		{"LD", CLASS_RM, false},
		{"ST", CLASS_RM, false},
		{"LDA", CLASS_RA, false},
		{"LDC", CLASS_RA, false},
		{"JLT", CLASS_RA, true},
		{"JLE", CLASS_RA, true},
		{"JGT", CLASS_RA, true},
		{"JGE", CLASS_RA, true},
		{"JEQ", CLASS_RA, true},
		{"JNE", CLASS_RA, true},
	}

	assert.Equal(OP_COUNT, len(table))

	for n, entry := range table {
		op, ok := LookupOpcode(entry.name)
		assert.True(ok, entry.name)
		assert.Equal(Opcode(n), op, entry.name)
		assert.Equal(entry.name, op.String())
		assert.Equal(entry.class, op.Class(), entry.name)
		assert.Equal(entry.branch, op.IsBranch(), entry.name)
	}
}

func TestLookupOpcode_Exact(t *testing.T) {
	assert := assert.New(t)

	for _, name := range []string{"halt", "Add", "LDC ", "", "???", "JMP"} {
		_, ok := LookupOpcode(name)
		assert.False(ok, name)
	}
}

func TestOpcodeInvalid(t *testing.T) {
	assert := assert.New(t)

	assert.False(Opcode(-1).Valid())
	assert.False(Opcode(OP_COUNT).Valid())
	assert.Equal("Opcode(17)", Opcode(OP_COUNT).String())
}

func TestInstructionString(t *testing.T) {
	assert := assert.New(t)

	code := Instruction{Opcode: OP_LD, A: 1, B: 2, C: -3}
	assert.Equal("LD 1 2 -3", code.String())
}
