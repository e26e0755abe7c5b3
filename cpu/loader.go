// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"regexp"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/opvm/internal"
)

// Program text limits.
const (
	MAX_TOKEN_LENGTH = 256     // Longest word accepted in program text.
	MAX_LINE_LENGTH  = 1 << 20 // Longest line, whitespace included.
)

// Defines returns the machine sizing as loader equates.
func (cfg Config) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"NR_REGS":    strconv.Itoa(cfg.Registers),
		"PC_REG":     strconv.Itoa(cfg.PcRegister),
		"IADDR_SIZE": strconv.Itoa(cfg.CodeSize),
		"DADDR_SIZE": strconv.Itoa(cfg.DataSize),
	})
}

// Loader turns program text into a Program.
//
// Program text is a sequence of `MNEMONIC A B C` records separated by any
// whitespace. An operand may be written as `$(expr)`, evaluated when
// loaded against the loader equates.
type Loader struct {
	Verbose bool   // If set, logs every loaded record.
	Config  Config // Machine the program is loaded for. Zero means DefaultConfig().

	Equate map[string]string // Equates visible to $(...) expressions.

	predefine map[string]string
}

// token is a word with its line number.
type token struct {
	word   string
	lineno int
}

// Predefine defines a new equate or redefines an existing equate.
func (ld *Loader) Predefine(equ string, value string) {
	if ld.predefine == nil {
		ld.predefine = map[string]string{equ: value}
	} else {
		ld.predefine[equ] = value
	}
}

var _exprRegexp = regexp.MustCompile(`\$\([^\$]*\)`)

// parenEval does compile-time $(...) evaluations
func (ld *Loader) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range ld.Equate {
		var v64 int64
		v64, err = strconv.ParseInt(str, 0, 64)
		if err != nil {
			// Non-integer equates are not visible.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

// expand replaces every $(...) on the line by its decimal value.
func (ld *Loader) expand(line string) (out string, err error) {
	out = _exprRegexp.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := ld.parenEval(str[2 : len(str)-1])
		if _err != nil {
			if err == nil {
				err = _err
			}
			return str
		}
		return strconv.FormatInt(value, 10)
	})
	return
}

// operand parses a decimal operand.
func operand(word string) (value int32, err error) {
	v64, err := strconv.ParseInt(word, 10, 32)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}
	value = int32(v64)
	return
}

// assemble builds an instruction from a mnemonic and three operands.
func (ld *Loader) assemble(words []token) (code Instruction, err error) {
	op, ok := LookupOpcode(words[0].word)
	if !ok {
		err = ErrOpcodeInvalid
		return
	}
	code.Opcode = op

	out := [3](*int32){&code.A, &code.B, &code.C}
	for n, tok := range words[1:] {
		var value int32
		value, err = operand(tok.word)
		if err != nil {
			err = &ErrSyntax{LineNo: tok.lineno, Word: tok.word, Err: err}
			return
		}

		isRegister := n < 2 || op.Class() == CLASS_RR
		if isRegister && (value < 0 || int(value) >= ld.Config.Registers) {
			err = &ErrSyntax{LineNo: tok.lineno, Word: tok.word, Err: ErrRegisterInvalid}
			return
		}
		*out[n] = value
	}

	return
}

// Parse parses an input stream into a Program.
func (ld *Loader) Parse(input io.Reader) (prog *Program, err error) {
	if ld.Config == (Config{}) {
		ld.Config = DefaultConfig()
	}

	err = ld.Config.Validate()
	if err != nil {
		return
	}

	ld.Equate = maps.Collect(internal.IterSeq2Concat(ld.Config.Defines(), maps.All(ld.predefine)))

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 4096), MAX_LINE_LENGTH)

	prog = &Program{}
	var pending []token
	var lineno int

	flush := func() (err error) {
		head := pending[0]
		if len(prog.Records) >= ld.Config.CodeSize {
			return &ErrSyntax{LineNo: head.lineno, Word: head.word, Err: ErrProgramTooLarge}
		}

		code, err := ld.assemble(pending)
		if err != nil {
			var serr *ErrSyntax
			if !errors.As(err, &serr) {
				err = &ErrSyntax{LineNo: head.lineno, Word: head.word, Err: err}
			}
			return
		}

		rec := Record{
			LineNo:      head.lineno,
			Address:     len(prog.Records),
			Instruction: code,
		}
		for _, tok := range pending {
			rec.Words = append(rec.Words, tok.word)
		}
		prog.Records = append(prog.Records, rec)

		if ld.Verbose {
			log.Printf("%v: %03d: %v", rec.LineNo, rec.Address, code)
		}

		pending = pending[:0]
		return
	}

	for scanner.Scan() {
		lineno++

		var line string
		line, err = ld.expand(scanner.Text())
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Word: strings.TrimSpace(scanner.Text()), Err: err}
			prog = nil
			return
		}

		for _, word := range strings.Fields(line) {
			if len(word) > MAX_TOKEN_LENGTH {
				err = &ErrSyntax{LineNo: lineno, Word: word[:MAX_TOKEN_LENGTH] + "...", Err: ErrTokenTooLong}
				prog = nil
				return
			}

			// Reject a bad mnemonic before reading its operands.
			if len(pending) == 0 {
				if _, ok := LookupOpcode(word); !ok {
					err = &ErrSyntax{LineNo: lineno, Word: word, Err: ErrOpcodeInvalid}
					prog = nil
					return
				}
			}

			pending = append(pending, token{word: word, lineno: lineno})
			if len(pending) == 4 {
				err = flush()
				if err != nil {
					prog = nil
					return
				}
			}
		}
	}

	err = scanner.Err()
	if err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			err = errors.Join(ErrLineTooLong, err)
		}
		err = &ErrSyntax{LineNo: lineno + 1, Err: err}
		prog = nil
		return
	}

	if len(pending) != 0 {
		head := pending[0]
		err = &ErrSyntax{LineNo: head.lineno, Word: head.word, Err: ErrOperandMissing}
		prog = nil
		return
	}

	return
}

// String returns the record's source text.
func (rec Record) String() string {
	return fmt.Sprintf("%d: %v", rec.LineNo, strings.Join(rec.Words, " "))
}
