package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/pbrain/memory"
	"github.com/ezrec/pbrain/word"
)

// newTestCpu loads words at address zero of a memory of size words.
func newTestCpu(size int, words ...word.Word) (cpu *Cpu, mem *memory.Memory) {
	mem = memory.New(size)
	_, err := mem.Load(0, size, words)
	if err != nil {
		panic(err)
	}

	cpu = NewCpu()
	cpu.BAR = 0
	cpu.LR = size
	cpu.IC = 1000

	return
}

// runTestCpu steps until the CPU halts or faults.
func runTestCpu(cpu *Cpu, mem *memory.Memory) (status Status, err error) {
	for range 1000 {
		status, err = cpu.Step(mem)
		if status != CONTINUE {
			return
		}
	}
	panic("runaway program")
}

func TestArithmetic(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(10,
		word.Make(word.OP_LOAD_ACC_IMM, "0100"),
		word.Make(word.OP_ADD_ACC_IMM, "0050"),
		word.Make(word.OP_LOAD_REG_ACC, "R1"),
		word.Make(word.OP_SUB_ACC_IMM, "0200"),
		word.Make(word.OP_HALT),
	)

	status, err := runTestCpu(cpu, mem)
	assert.Equal(HALT, status)
	assert.ErrorIs(err, ErrHalt)
	assert.Equal(9950, cpu.Acc)
	assert.Equal(150, cpu.R[1])
	assert.Equal(4, cpu.PC)
	assert.Equal(5, cpu.Ticks)
	assert.Equal(995, cpu.IC)
}

func TestPointers(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(10,
		word.Make(word.OP_LOAD_PTR_IMM, "P0", "98"),
		word.Make(word.OP_ADD_PTR_IMM, "P0", "05"),
		word.Make(word.OP_LOAD_PTR_IMM, "P1", "10"),
		word.Make(word.OP_SUB_PTR_IMM, "P1", "20"),
		word.Make(word.OP_HALT),
	)

	_, err := runTestCpu(cpu, mem)
	assert.ErrorIs(err, ErrHalt)
	assert.Equal(3, cpu.P[0])
	assert.Equal(90, cpu.P[1])
}

func TestLoadStore(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(20,
		word.Make(word.OP_LOAD_PTR_IMM, "P1", "10"),
		word.Make(word.OP_LOAD_ACC_IMM, "1234"),
		word.Make(word.OP_STORE_ACC_PTR, "P1"),
		word.Make(word.OP_LOAD_R0_IMM, "0007"),
		word.Make(word.OP_STORE_REG_DIR, "R0", "11"),
		word.Make(word.OP_LOAD_REG_PTR, "R2", "P1"),
		word.Make(word.OP_LOAD_ACC_DIR, "11"),
		word.Make(word.OP_ADD_ACC_PTR, "P1"),
		word.Make(word.OP_HALT),
	)

	_, err := runTestCpu(cpu, mem)
	assert.ErrorIs(err, ErrHalt)

	value, err := mem.Value(10)
	assert.NoError(err)
	assert.Equal(1234, value)

	value, err = mem.Value(11)
	assert.NoError(err)
	assert.Equal(7, value)

	assert.Equal(1234, cpu.R[2])
	assert.Equal(1241, cpu.Acc)
	assert.Equal(0, cpu.RangeFaults)
}

func TestBranch(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(10,
		word.Make(word.OP_LOAD_ACC_IMM, "0000"),
		word.Make(word.OP_ADD_ACC_IMM, "0001"),
		word.Make(word.OP_LT_IMM, "0005"),
		word.Make(word.OP_BRANCH_TRUE, "01"),
		word.Make(word.OP_HALT),
	)

	status, _ := runTestCpu(cpu, mem)
	assert.Equal(HALT, status)
	assert.Equal(5, cpu.Acc)
	assert.False(cpu.Cond)
	assert.Equal(17, cpu.Ticks)
}

func TestCompare(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		acc  int
		r1   int
		op   word.Opcode
		cond bool
	}){
		{"eq", 5, 5, word.OP_EQ_REG, true},
		{"eq_not", 5, 6, word.OP_EQ_REG, false},
		{"lt", 5, 6, word.OP_LT_REG, true},
		{"lt_not", 6, 6, word.OP_LT_REG, false},
		{"gt", 7, 6, word.OP_GT_REG, true},
		{"gt_not", 6, 6, word.OP_GT_REG, false},
	}

	for _, entry := range table {
		cpu, mem := newTestCpu(4, word.Make(entry.op, "R1"))
		cpu.Acc = entry.acc
		cpu.R[1] = entry.r1
		cpu.Cond = !entry.cond

		status, err := cpu.Step(mem)
		assert.NoError(err, entry.name)
		assert.Equal(CONTINUE, status, entry.name)
		assert.Equal(entry.cond, cpu.Cond, entry.name)
		assert.Equal(1, cpu.PC, entry.name)
	}
}

func TestMod(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(4, word.Make(word.OP_MOD, "R2", "R3"))
	cpu.R[2] = 17
	cpu.R[3] = 5

	_, err := cpu.Step(mem)
	assert.NoError(err)
	assert.Equal(2, cpu.Acc)
}

func TestTrap(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(4, word.Make(word.OP_TRAP, "R2", "R3"))
	assert.False(cpu.Trap.Pending())

	cpu.R[2] = 1
	_, err := cpu.Step(mem)
	assert.NoError(err)
	assert.True(cpu.Trap.Pending())
	assert.Equal(Trap{Number: 1, Op: 3}, cpu.Trap)
	assert.Equal(1, cpu.PC)
}

func TestFaults(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		code  word.Word
		setup func(cpu *Cpu)
		err   []error
		pc    int
	}){
		{"opcode", word.Make(word.Opcode(50)), nil, []error{ErrOpcodeInvalid}, 0},
		{"blank", word.Blank, nil, []error{ErrOpcodeInvalid}, 0},
		{"pointer", word.Make(word.OP_LOAD_ACC_PTR, "R1"), nil, []error{ErrPointerInvalid, ErrOperand1}, 0},
		{"pointer_index", word.Make(word.OP_LOAD_ACC_PTR, "P4"), nil, []error{ErrPointerInvalid, ErrOperand1}, 0},
		{"register", word.Make(word.OP_MOVE_REG, "R1", "P2"), nil, []error{ErrRegisterInvalid, ErrOperand2}, 0},
		{"address", word.Make(word.OP_LOAD_ACC_DIR, "50"), nil, []error{ErrAddressInvalid, ErrOperand1}, 0},
		{"reg_address", word.Make(word.OP_LOAD_REG_DIR, "R1", "20"), nil, []error{ErrAddressInvalid, ErrOperand2}, 0},
		{"mod", word.Make(word.OP_MOD, "R0", "R1"), nil, []error{ErrDivideByZero, ErrOperand2}, 1},
		{"memory", word.Make(word.OP_LOAD_ACC_PTR, "P0"),
			func(cpu *Cpu) { cpu.P[0] = 50 }, []error{ErrMemory}, 1},
	}

	for _, entry := range table {
		cpu, mem := newTestCpu(20, entry.code)
		if entry.setup != nil {
			entry.setup(cpu)
		}
		acc := cpu.Acc

		status, err := cpu.Step(mem)
		assert.Equal(FAULT, status, entry.name)
		for _, expected := range entry.err {
			assert.ErrorIs(err, expected, entry.name)
		}

		var ei *ErrInstruction
		if assert.True(errors.As(err, &ei), entry.name) {
			assert.Equal(0, ei.PC, entry.name)
			assert.Equal(entry.code, ei.IR, entry.name)
		}

		assert.Equal(entry.pc, cpu.PC, entry.name)
		assert.Equal(acc, cpu.Acc, entry.name)
	}
}

func TestFetchOutsideMemory(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(4)
	cpu.PC = 10

	status, err := cpu.Step(mem)
	assert.Equal(FAULT, status)
	assert.ErrorIs(err, ErrMemory)
	assert.Equal(word.Blank, cpu.IR)
}

func TestAddressRange(t *testing.T) {
	assert := assert.New(t)

	cpu, mem := newTestCpu(20,
		word.Make(word.OP_LOAD_ACC_IMM, "0042"),
		word.Make(word.OP_STORE_ACC_DIR, "15"),
		word.Make(word.OP_HALT),
	)
	cpu.LR = 5

	_, err := runTestCpu(cpu, mem)
	assert.ErrorIs(err, ErrHalt)
	assert.Equal(1, cpu.RangeFaults)

	value, err := mem.Value(15)
	assert.NoError(err)
	assert.Equal(42, value)
}

func TestRelocation(t *testing.T) {
	assert := assert.New(t)

	mem := memory.New(30)
	_, err := mem.Load(10, 10, []word.Word{
		word.Make(word.OP_LOAD_ACC_IMM, "0099"),
		word.Make(word.OP_STORE_ACC_DIR, "05"),
		word.Make(word.OP_HALT),
	})
	assert.NoError(err)

	cpu := NewCpu()
	cpu.BAR = 10
	cpu.LR = 20
	cpu.IC = 10

	_, err = runTestCpu(cpu, mem)
	assert.ErrorIs(err, ErrHalt)
	assert.Equal(12, cpu.EAR)
	assert.Equal(0, cpu.RangeFaults)

	value, err := mem.Value(15)
	assert.NoError(err)
	assert.Equal(99, value)
}

func TestContextString(t *testing.T) {
	assert := assert.New(t)

	ctx := NewContext()
	assert.True(ctx.Cond)
	assert.Equal(byte('T'), ctx.Psw())

	text := ctx.String()
	assert.Contains(text, "PSW=T")
	assert.Contains(text, "IR=ZZZZZZ")
	assert.Contains(text, "R0=0000")

	ctx.Cond = false
	assert.Contains(ctx.String(), "PSW=F")
}

func TestStatusOf(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(CONTINUE, StatusOf(nil))
	assert.Equal(HALT, StatusOf(ErrHalt))
	assert.Equal(FAULT, StatusOf(&ErrInstruction{Err: ErrOpcodeInvalid}))
	assert.Equal("fault", FAULT.String())
}
