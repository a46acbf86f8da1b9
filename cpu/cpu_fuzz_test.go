package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/pbrain/memory"
	"github.com/ezrec/pbrain/word"
)

// fuzzOperand selects a pointer, register or two digit operand.
// Register index 4 is deliberately out of range.
func fuzzOperand(sel uint8) string {
	switch sel % 3 {
	case 0:
		return word.PointerOperand(int(sel/3) % 5)
	case 1:
		return word.RegisterOperand(int(sel/3) % 5)
	default:
		return word.AddressOperand(int(sel))
	}
}

func FuzzExecute(f *testing.F) {
	for op := range word.Opcodes() {
		f.Add(uint8(op), uint8(0), uint8(1), uint16(1234), uint16(0))
		f.Add(uint8(op), uint8(3), uint8(4), uint16(9999), uint16(7))
		f.Add(uint8(op), uint8(2), uint8(5), uint16(0), uint16(99))
	}

	f.Fuzz(func(t *testing.T, op uint8, a uint8, b uint8, acc uint16, reg uint16) {
		assert := assert.New(t)

		const size = 50

		mem := memory.New(size)
		for addr := range size {
			assert.NoError(mem.SetWord(addr, word.MakeValue(addr*37)))
		}

		opcode := word.Opcode(op % 100)
		var code word.Word
		switch opcode.Format() {
		case word.FORMAT_IMM:
			code = word.Make(opcode, word.ValueOperand(int(a)*100+int(b)))
		case word.FORMAT_PTR_IMM:
			code = word.Make(opcode, fuzzOperand(a), word.AddressOperand(int(b)))
		default:
			code = word.Make(opcode, fuzzOperand(a), fuzzOperand(b))
		}
		assert.NoError(mem.SetWord(0, code))

		cpu := NewCpu()
		cpu.LR = size
		cpu.IC = 5
		cpu.Acc = int(acc) % word.VALUE_LIMIT
		for n := range cpu.R {
			cpu.R[n] = (int(reg) + n) % word.VALUE_LIMIT
			cpu.P[n] = (int(reg) + n*13) % word.POINTER_LIMIT
		}

		before := cpu.Context
		before.IC--
		before.EAR = 0
		before.IR = code

		status, err := cpu.Step(mem)

		switch status {
		case CONTINUE:
			assert.NoError(err)
		case HALT:
			assert.ErrorIs(err, ErrHalt)
			assert.Equal(0, cpu.PC)
		case FAULT:
			var ei *ErrInstruction
			assert.True(errors.As(err, &ei))
			if errors.Is(err, ErrOpcodeInvalid) ||
				errors.Is(err, ErrPointerInvalid) ||
				errors.Is(err, ErrRegisterInvalid) ||
				errors.Is(err, ErrAddressInvalid) {
				assert.Equal(before, cpu.Context)
			}
		}

		assert.GreaterOrEqual(cpu.Acc, 0)
		assert.Less(cpu.Acc, word.VALUE_LIMIT)
		for n := range word.REGISTERS {
			assert.GreaterOrEqual(cpu.R[n], 0)
			assert.Less(cpu.R[n], word.VALUE_LIMIT)
			assert.GreaterOrEqual(cpu.P[n], 0)
			assert.Less(cpu.P[n], word.POINTER_LIMIT)
		}
		assert.Equal(4, cpu.IC)
	})
}
