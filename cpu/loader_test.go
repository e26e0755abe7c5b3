package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoader(t *testing.T) {
	assert := assert.New(t)

	ld := &Loader{}

	prog, err := ld.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Records))

	assert.Equal("8", ld.Equate["NR_REGS"])
	assert.Equal("7", ld.Equate["PC_REG"])
	assert.Equal("1024", ld.Equate["IADDR_SIZE"])
	assert.Equal("1024", ld.Equate["DADDR_SIZE"])
}

func TestLoaderParse(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"LDC 0 0 5",
		"LDC 1 0 3",
		"ADD 2 0 1",
		"OUT 2 0 0",
		"HALT 0 0 0",
	}

	ld := &Loader{}
	prog, err := ld.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	expected := []Record{
		{1, 0, []string{"LDC", "0", "0", "5"}, Instruction{OP_LDC, 0, 0, 5}},
		{2, 1, []string{"LDC", "1", "0", "3"}, Instruction{OP_LDC, 1, 0, 3}},
		{3, 2, []string{"ADD", "2", "0", "1"}, Instruction{OP_ADD, 2, 0, 1}},
		{4, 3, []string{"OUT", "2", "0", "0"}, Instruction{OP_OUT, 2, 0, 0}},
		{5, 4, []string{"HALT", "0", "0", "0"}, Instruction{OP_HALT, 0, 0, 0}},
	}
	assert.Equal(expected, prog.Records)
}

func TestLoaderWhitespace(t *testing.T) {
	assert := assert.New(t)

	// Records are a token stream; line breaks are just whitespace.
	text := "  LD 1\n\t2 -3 ST\n\n4 5\n 1000   JNE 0 7 -2\n"

	ld := &Loader{}
	prog, err := ld.Parse(strings.NewReader(text))
	assert.NoError(err)
	assert.Equal(3, len(prog.Records))
	assert.Equal(Instruction{OP_LD, 1, 2, -3}, prog.Records[0].Instruction)
	assert.Equal(Instruction{OP_ST, 4, 5, 1000}, prog.Records[1].Instruction)
	assert.Equal(Instruction{OP_JNE, 0, 7, -2}, prog.Records[2].Instruction)
	assert.Equal(2, prog.Records[1].LineNo)
	assert.Equal(5, prog.Records[2].LineNo)
}

func TestLoaderErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		text   string
		err    error
		lineno int
	}){
		{"unknown", "LDC 0 0 1\nJMP 0 0 0", ErrOpcodeInvalid, 2},
		{"lowercase", "halt 0 0 0", ErrOpcodeInvalid, 1},
		{"number_opcode", "5 0 0 0", ErrOpcodeInvalid, 1},
		{"reg_a_high", "LDC 8 0 0", ErrRegisterInvalid, 1},
		{"reg_a_neg", "LDC -1 0 0", ErrRegisterInvalid, 1},
		{"reg_b_high", "LD 0\n8 0", ErrRegisterInvalid, 2},
		{"reg_c_rr", "ADD 0 0 8", ErrRegisterInvalid, 1},
		{"reg_c_rr_neg", "OUT 0 0 -1", ErrRegisterInvalid, 1},
		{"missing", "LDC 0 0 1\nADD 0 0", ErrOperandMissing, 2},
		{"not_number", "LDC 0 0 x", ErrParseNumber("x"), 1},
		{"hex_rejected", "LDC 0 0 0x10", ErrParseNumber("0x10"), 1},
		{"too_big", "LDC 0 0 2147483648", ErrParseNumber("2147483648"), 1},
		{"too_long", "LDC 0 0 " + strings.Repeat("1", MAX_TOKEN_LENGTH+1), ErrTokenTooLong, 1},
		{"bad_expr", "LDC 0 0 $(1 +)", ErrParseExpression("1 +"), 1},
	}

	for _, entry := range table {
		ld := &Loader{}
		prog, err := ld.Parse(strings.NewReader(entry.text))
		assert.Nil(prog, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)

		var serr *ErrSyntax
		if assert.True(errors.As(err, &serr), entry.name) {
			assert.Equal(entry.lineno, serr.LineNo, entry.name)
		}
	}
}

func TestLoaderLiteralOperand(t *testing.T) {
	assert := assert.New(t)

	// Only the register-register class checks the third operand.
	ld := &Loader{}
	prog, err := ld.Parse(strings.NewReader("LDC 0 0 -99999 LD 0 0 5000 JEQ 0 0 -1 LDA 0 0 99"))
	assert.NoError(err)
	assert.Equal(4, len(prog.Records))
}

func TestLoaderTooLarge(t *testing.T) {
	assert := assert.New(t)

	ld := &Loader{Config: Config{Registers: 8, PcRegister: 7, CodeSize: 2, DataSize: 2}}

	_, err := ld.Parse(strings.NewReader("HALT 0 0 0\nHALT 0 0 0\n"))
	assert.NoError(err)

	_, err = ld.Parse(strings.NewReader("HALT 0 0 0\nHALT 0 0 0\nHALT 0 0 0\n"))
	assert.ErrorIs(err, ErrProgramTooLarge)
}

func TestLoaderRegisterConfig(t *testing.T) {
	assert := assert.New(t)

	ld := &Loader{Config: Config{Registers: 16, PcRegister: 15, CodeSize: 8, DataSize: 8}}

	prog, err := ld.Parse(strings.NewReader("ADD 15 14 13"))
	assert.NoError(err)
	assert.Equal(Instruction{OP_ADD, 15, 14, 13}, prog.Records[0].Instruction)
	assert.Equal("15", ld.Equate["PC_REG"])
}

func TestLoaderExpression(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"LDC 0 0 $(DADDR_SIZE - 1)",
		"LDA 1 $(PC_REG) $( 2 * 3 + BASE )",
		"JEQ 0 $(PC_REG) $(-2)",
		"LDC 2 0 $(1 << 4)",
	}

	ld := &Loader{}
	ld.Predefine("BASE", "0x10")

	prog, err := ld.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(Instruction{OP_LDC, 0, 0, 1023}, prog.Records[0].Instruction)
	assert.Equal(Instruction{OP_LDA, 1, 7, 22}, prog.Records[1].Instruction)
	assert.Equal(Instruction{OP_JEQ, 0, 7, -2}, prog.Records[2].Instruction)
	assert.Equal(Instruction{OP_LDC, 2, 0, 16}, prog.Records[3].Instruction)
	assert.Equal([]string{"LDA", "1", "7", "22"}, prog.Records[1].Words)
}

func TestLoaderExpressionRegister(t *testing.T) {
	assert := assert.New(t)

	// Expressions are checked like any other operand.
	ld := &Loader{}
	_, err := ld.Parse(strings.NewReader("ADD 0 0 $(NR_REGS)"))
	assert.ErrorIs(err, ErrRegisterInvalid)
}

func TestLoaderReuse(t *testing.T) {
	assert := assert.New(t)

	ld := &Loader{}
	_, err := ld.Parse(strings.NewReader("BOGUS"))
	assert.Error(err)

	prog, err := ld.Parse(strings.NewReader("LDC 0 0 1"))
	assert.NoError(err)
	assert.Equal(1, len(prog.Records))
}

func TestLoaderLongWhitespace(t *testing.T) {
	assert := assert.New(t)

	text := "LDC 0 0 1" + strings.Repeat(" ", 70000) + "HALT 0 0 0"

	ld := &Loader{}
	prog, err := ld.Parse(strings.NewReader(text))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(2, len(prog.Records))
	assert.Equal(Instruction{OP_HALT, 0, 0, 0}, prog.Records[1].Instruction)
}

func TestLoaderLineTooLong(t *testing.T) {
	assert := assert.New(t)

	text := "LDC 0 0 1" + strings.Repeat(" ", MAX_LINE_LENGTH+1) + "HALT 0 0 0"

	ld := &Loader{}
	prog, err := ld.Parse(strings.NewReader(text))
	assert.Nil(prog)
	assert.ErrorIs(err, ErrLineTooLong)

	var serr *ErrSyntax
	if assert.True(errors.As(err, &serr)) {
		assert.Equal(1, serr.LineNo)
	}
}

func TestLoaderConfig(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name   string
		config Config
		err    error
	}){
		{"fallthrough_only", Config{FallThrough: true}, ErrConfigRegister},
		{"no_memory", Config{Registers: 8, PcRegister: 7}, ErrConfigSize},
		{"pc_outside", Config{Registers: 4, PcRegister: 4, CodeSize: 8, DataSize: 8}, ErrConfigRegister},
	}

	for _, entry := range table {
		ld := &Loader{Config: entry.config}
		prog, err := ld.Parse(strings.NewReader("HALT 0 0 0"))
		assert.Nil(prog, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)
	}
}
