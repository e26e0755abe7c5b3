package cpu

import (
	"iter"
	"strings"
)

// Record is one loaded instruction with its place in the program text.
type Record struct {
	LineNo      int         // Line of the mnemonic.
	Address     int         // Instruction memory address.
	Words       []string    // Source words, after expression expansion.
	Instruction Instruction // Assembled instruction.
}

// Program is a loaded instruction listing.
type Program struct {
	Records []Record
}

// Debug returns the record loaded at pc, or nil.
func (prog *Program) Debug(pc int32) (rec *Record) {
	for n := range prog.Records {
		if prog.Records[n].Address == int(pc) {
			rec = &prog.Records[n]
			break
		}
	}

	return
}

// Instructions iterates the program by address.
func (prog *Program) Instructions() iter.Seq2[int, Instruction] {
	return func(yield func(addr int, code Instruction) bool) {
		for _, rec := range prog.Records {
			if !yield(rec.Address, rec.Instruction) {
				return
			}
		}
	}
}

// String returns the program in loader syntax, one record per line.
func (prog *Program) String() string {
	var sb strings.Builder
	for _, code := range prog.Instructions() {
		sb.WriteString(code.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
