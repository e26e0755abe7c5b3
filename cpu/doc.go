// Package cpu implements the register machine and program loader for opvm.
//
// The machine has a register file of signed 32-bit integers (eight by
// default), one of which is the program counter (r7 by default), an
// instruction store and a data store (1024 cells each by default). Every
// instruction is an opcode plus three integer operands; the opcode's
// addressing-mode class decides how the third operand is read.
//
// The loader reads whitespace separated `MNEMONIC A B C` records, with
// optional `$(...)` compile-time expressions for operands.
package cpu
