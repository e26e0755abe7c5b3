package cpu

import (
	"errors"
	"log"
)

// handler executes one opcode against the cpu. A nil return is success;
// any other error stops the machine.
type handler func(cpu *Cpu, code Instruction) error

// _handlers is keyed by opcode. HALT is handled by Execute.
var _handlers = [OP_COUNT]handler{
	OP_IN:  execIn,
	OP_OUT: execOut,
	OP_ADD: execAlu(func(a, b int32) int32 { return a + b }),
	OP_SUB: execAlu(func(a, b int32) int32 { return a - b }),
	OP_MUL: execAlu(func(a, b int32) int32 { return a * b }),
	OP_DIV: execDiv,
	OP_LD:  execLd,
	OP_ST:  execSt,
	OP_LDA: execLda,
	OP_LDC: execLdc,
	OP_JLT: execBranch(func(v int32) bool { return v < 0 }),
	OP_JLE: execBranch(func(v int32) bool { return v <= 0 }),
	OP_JGT: execBranch(func(v int32) bool { return v > 0 }),
	OP_JGE: execBranch(func(v int32) bool { return v >= 0 }),
	OP_JEQ: execBranch(func(v int32) bool { return v == 0 }),
	OP_JNE: execBranch(func(v int32) bool { return v != 0 }),
}

// address computes reg[B] + C without wrapping.
func (cpu *Cpu) address(code Instruction) int64 {
	return int64(cpu.Register[code.B]) + int64(code.C)
}

// execIn reads a value into reg[A]. Unreadable input leaves reg[A] as is.
func execIn(cpu *Cpu, code Instruction) error {
	value, err := cpu.receive()
	if errors.Is(err, ErrChannelInvalid) {
		return err
	}
	if err != nil {
		if cpu.Verbose {
			log.Printf("cpu: in: %v", err)
		}
		return nil
	}

	cpu.Register[code.A] = value
	return nil
}

// execOut writes reg[A].
func execOut(cpu *Cpu, code Instruction) error {
	return cpu.send(cpu.Register[code.A])
}

// execAlu returns a handler for reg[A] = op(reg[B], reg[C]).
func execAlu(op func(a, b int32) int32) handler {
	return func(cpu *Cpu, code Instruction) error {
		cpu.Register[code.A] = op(cpu.Register[code.B], cpu.Register[code.C])
		return nil
	}
}

// execDiv is reg[A] = reg[B] / reg[C], truncated toward zero.
func execDiv(cpu *Cpu, code Instruction) error {
	divisor := cpu.Register[code.C]
	if divisor == 0 {
		return FAULT_DIVIDE_ZERO
	}

	cpu.Register[code.A] = cpu.Register[code.B] / divisor
	return nil
}

// execLd is reg[A] = dmem[reg[B] + C].
func execLd(cpu *Cpu, code Instruction) error {
	value, ok := cpu.Data.Read(cpu.address(code))
	if !ok {
		return FAULT_DMEM
	}

	cpu.Register[code.A] = value
	return nil
}

// execSt is dmem[reg[B] + C] = reg[A].
func execSt(cpu *Cpu, code Instruction) error {
	if !cpu.Data.Write(cpu.address(code), cpu.Register[code.A]) {
		return FAULT_DMEM
	}
	return nil
}

// execLda is reg[A] = reg[B] + C. No memory is accessed.
func execLda(cpu *Cpu, code Instruction) error {
	cpu.Register[code.A] = cpu.Register[code.B] + code.C
	return nil
}

// execLdc is reg[A] = C.
func execLdc(cpu *Cpu, code Instruction) error {
	cpu.Register[code.A] = code.C
	return nil
}

// execBranch returns a handler that loads reg[B] + C into the program
// counter when cond(reg[A]) holds. The target is checked first, taken or
// not.
func execBranch(cond func(value int32) bool) handler {
	return func(cpu *Cpu, code Instruction) error {
		target := cpu.address(code)
		if !cpu.Code.Contains(target) {
			return FAULT_IMEM
		}

		if cond(cpu.Register[code.A]) {
			cpu.SetPc(int32(target))
			cpu.branched = true
		}
		return nil
	}
}
