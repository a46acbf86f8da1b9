package cpu

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/ezrec/pbrain/word"
)

// Memory is the word store the CPU executes from.
type Memory interface {
	Size() int
	Word(addr int) (word.Word, error)
	Value(addr int) (int, error)
	SetValue(addr int, value int) error
}

// Status is the outcome of executing one instruction.
type Status int

//go:generate go tool stringer -linecomment -type=Status
const (
	CONTINUE = Status(0) // continue
	HALT     = Status(1) // halt
	FAULT    = Status(2) // fault
)

// StatusOf classifies the error returned by Execute or Step.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return CONTINUE
	case errors.Is(err, ErrHalt):
		return HALT
	default:
		return FAULT
	}
}

// Context is the register file of the CPU.
// Copying a Context is a complete snapshot of the processor state.
type Context struct {
	Acc  int                 // Accumulator, 0..9999.
	R    [word.REGISTERS]int // General registers, 0..9999.
	P    [word.REGISTERS]int // Pointer registers, 0..99.
	PC   int                 // Program counter, relative to BAR.
	SP   int                 // Stack pointer.
	IC   int                 // Instructions left in the time slice.
	Cond bool                // Comparison flag.
	BAR  int                 // Base address register.
	LR   int                 // Limit register.
	EAR  int                 // Last effective address.
	IR   word.Word           // Current instruction.
}

// NewContext returns the reset state of a process's registers.
func NewContext() Context {
	return Context{
		Cond: true,
		IR:   word.Blank,
	}
}

// Psw returns the comparison flag as 'T' or 'F'.
func (ctx *Context) Psw() byte {
	if ctx.Cond {
		return 'T'
	}
	return 'F'
}

// String returns the register file in dump format.
func (ctx *Context) String() string {
	return fmt.Sprintf("  PC=%02d  SP=%02d  IC=%02d  ACC=%04d  BAR=%03d  LR=%03d  EAR=%03d  PSW=%c  IR=%v\n"+
		"  P0=%02d    P1=%02d    P2=%02d    P3=%02d\n"+
		"  R0=%04d  R1=%04d  R2=%04d  R3=%04d\n",
		ctx.PC, ctx.SP, ctx.IC, ctx.Acc, ctx.BAR, ctx.LR, ctx.EAR, ctx.Psw(), ctx.IR.String(),
		ctx.P[0], ctx.P[1], ctx.P[2], ctx.P[3],
		ctx.R[0], ctx.R[1], ctx.R[2], ctx.R[3])
}

// Trap is a latched operating system request.
type Trap struct {
	Number int // Trap number, TRAP_NONE if nothing is pending.
	Op     int // Register digit named by the trap instruction.
}

const TRAP_NONE = -1

// Pending returns true if a trap is waiting to be serviced.
func (trap Trap) Pending() bool {
	return trap.Number != TRAP_NONE
}

// Cpu is the simulation of the PBrain12 processor.
type Cpu struct {
	Verbose  bool         // Set to enable verbose logging.
	Messages bool         // Set to report address range diagnostics.
	Logger   hclog.Logger // Destination of narration and diagnostics.

	Context // Live registers of the running process.

	Trap        Trap // Pending trap.
	Ticks       int  // Instructions executed.
	RangeFaults int  // Effective address range reports.
}

// NewCpu creates a CPU in its reset state.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Logger: hclog.NewNullLogger(),
	}
	cpu.Reset()

	return
}

// Reset the CPU state.
func (cpu *Cpu) Reset() {
	cpu.Context = NewContext()
	cpu.Trap = Trap{Number: TRAP_NONE}
	cpu.Ticks = 0
	cpu.RangeFaults = 0
}

// Fetch loads the instruction at PC into IR and consumes one instruction
// of the time slice.
func (cpu *Cpu) Fetch(mem Memory) (err error) {
	cpu.EAR = cpu.BAR + cpu.PC
	cpu.IC--

	cpu.IR, err = mem.Word(cpu.EAR)
	if err != nil {
		cpu.IR = word.Blank
		err = &ErrInstruction{PC: cpu.PC, IR: cpu.IR, Err: errors.Join(ErrMemory, err)}
		return
	}

	return
}

// Step fetches and executes a single instruction.
func (cpu *Cpu) Step(mem Memory) (status Status, err error) {
	cpu.Ticks++

	err = cpu.Fetch(mem)
	if err == nil {
		err = cpu.Execute(mem)
	}

	status = StatusOf(err)
	return
}

// effective relocates a relative address, reporting it if it leaves the
// process window.
func (cpu *Cpu) effective(rel int) int {
	cpu.EAR = cpu.BAR + rel
	if cpu.EAR < cpu.BAR || cpu.EAR > cpu.LR {
		cpu.RangeFaults++
		if cpu.Messages {
			cpu.Logger.Warn(ErrAddressRange{EAR: cpu.EAR, BAR: cpu.BAR, LR: cpu.LR}.Error())
		}
	}
	return cpu.EAR
}

// load reads the value at a relative address.
// Words holding non-digit characters are reduced into the value range.
func (cpu *Cpu) load(mem Memory, rel int) (value int, err error) {
	value, err = mem.Value(cpu.effective(rel))
	if err != nil {
		err = errors.Join(ErrMemory, err)
		return
	}
	value = word.Wrap(value, word.VALUE_LIMIT)
	return
}

// store writes the value at a relative address.
func (cpu *Cpu) store(mem Memory, rel int, value int) (err error) {
	err = mem.SetValue(cpu.effective(rel), value)
	if err != nil {
		err = errors.Join(ErrMemory, err)
	}
	return
}

// pointer decodes operand n as a pointer register.
func pointer(ir word.Word, n int) (index int, err error) {
	index, ok := ir.Pointer(n)
	if !ok {
		err = errors.Join(ErrPointerInvalid, operandErr[n])
	}
	return
}

// register decodes operand n as a general register.
func register(ir word.Word, n int) (index int, err error) {
	index, ok := ir.Register(n)
	if !ok {
		err = errors.Join(ErrRegisterInvalid, operandErr[n])
	}
	return
}

// direct decodes operand n as a direct address.
func direct(mem Memory, ir word.Word, n int) (addr int, err error) {
	addr = ir.Operand(n)
	if addr >= mem.Size() {
		err = errors.Join(ErrAddressInvalid, operandErr[n])
	}
	return
}

// decode validates the operands of an instruction.
// Nothing in the CPU is modified.
func decode(mem Memory, ir word.Word) (a, b int, err error) {
	op := ir.Opcode()
	if !op.Valid() {
		err = ErrOpcodeInvalid
		return
	}

	switch op.Format() {
	case word.FORMAT_PTR_IMM, word.FORMAT_PTR:
		a, err = pointer(ir, 0)
	case word.FORMAT_REG, word.FORMAT_TRAP:
		a, err = register(ir, 0)
	case word.FORMAT_REG_PTR:
		a, err = register(ir, 0)
		if err == nil {
			b, err = pointer(ir, 1)
		}
	case word.FORMAT_REG_REG:
		a, err = register(ir, 0)
		if err == nil {
			b, err = register(ir, 1)
		}
	case word.FORMAT_REG_ADDR:
		a, err = register(ir, 0)
		if err == nil {
			b, err = direct(mem, ir, 1)
		}
	case word.FORMAT_ADDR:
		switch op {
		case word.OP_BRANCH_TRUE, word.OP_BRANCH_FALSE, word.OP_BRANCH:
			a = ir.Operand(0)
		default:
			a, err = direct(mem, ir, 0)
		}
	}

	return
}

// Execute executes the instruction in IR.
//
// Register specifiers and direct addresses are validated before PC is
// advanced, so an instruction with a bad operand changes nothing. Halt
// returns ErrHalt without advancing PC.
func (cpu *Cpu) Execute(mem Memory) (err error) {
	ir := cpu.IR
	pc := cpu.PC

	defer func() {
		if err != nil && err != ErrHalt {
			err = &ErrInstruction{PC: pc, IR: ir, Err: err}
			if cpu.Messages {
				cpu.Logger.Warn("fault", "error", err)
			}
		}
	}()

	op := ir.Opcode()

	if cpu.Verbose {
		cpu.Logger.Debug("execute", "pc", pc, "ic", cpu.IC, "ir", ir.String(), "op", ir.Disassemble())
	}

	a, b, err := decode(mem, ir)
	if err != nil {
		return
	}

	if op != word.OP_HALT {
		cpu.PC++
	}

	var value int

	switch op {
	case word.OP_LOAD_PTR_IMM:
		cpu.P[a] = ir.Operand(1)
	case word.OP_ADD_PTR_IMM:
		cpu.P[a] = word.Wrap(cpu.P[a]+ir.Operand(1), word.POINTER_LIMIT)
	case word.OP_SUB_PTR_IMM:
		cpu.P[a] = word.Wrap(cpu.P[a]-ir.Operand(1), word.POINTER_LIMIT)
	case word.OP_LOAD_ACC_IMM:
		cpu.Acc = ir.Value()
	case word.OP_LOAD_ACC_PTR:
		value, err = cpu.load(mem, cpu.P[a])
		if err == nil {
			cpu.Acc = value
		}
	case word.OP_LOAD_ACC_DIR:
		value, err = cpu.load(mem, a)
		if err == nil {
			cpu.Acc = value
		}
	case word.OP_STORE_ACC_PTR:
		err = cpu.store(mem, cpu.P[a], cpu.Acc)
	case word.OP_STORE_ACC_DIR:
		err = cpu.store(mem, a, cpu.Acc)
	case word.OP_STORE_REG_PTR:
		err = cpu.store(mem, cpu.P[b], cpu.R[a])
	case word.OP_STORE_REG_DIR:
		err = cpu.store(mem, b, cpu.R[a])
	case word.OP_LOAD_REG_PTR:
		value, err = cpu.load(mem, cpu.P[b])
		if err == nil {
			cpu.R[a] = value
		}
	case word.OP_LOAD_REG_DIR:
		value, err = cpu.load(mem, b)
		if err == nil {
			cpu.R[a] = value
		}
	case word.OP_LOAD_R0_IMM:
		cpu.R[0] = ir.Value()
	case word.OP_MOVE_REG:
		cpu.R[a] = cpu.R[b]
	case word.OP_LOAD_ACC_REG:
		cpu.Acc = cpu.R[a]
	case word.OP_LOAD_REG_ACC:
		cpu.R[a] = cpu.Acc
	case word.OP_ADD_ACC_IMM:
		cpu.Acc = word.Wrap(cpu.Acc+ir.Value(), word.VALUE_LIMIT)
	case word.OP_SUB_ACC_IMM:
		cpu.Acc = word.Wrap(cpu.Acc-ir.Value(), word.VALUE_LIMIT)
	case word.OP_ADD_ACC_REG:
		cpu.Acc = word.Wrap(cpu.Acc+cpu.R[a], word.VALUE_LIMIT)
	case word.OP_SUB_ACC_REG:
		cpu.Acc = word.Wrap(cpu.Acc-cpu.R[a], word.VALUE_LIMIT)
	case word.OP_ADD_ACC_PTR, word.OP_ADD_ACC_DIR, word.OP_SUB_ACC_PTR, word.OP_SUB_ACC_DIR:
		rel := a
		if op == word.OP_ADD_ACC_PTR || op == word.OP_SUB_ACC_PTR {
			rel = cpu.P[a]
		}
		value, err = cpu.load(mem, rel)
		if err != nil {
			break
		}
		if op == word.OP_SUB_ACC_PTR || op == word.OP_SUB_ACC_DIR {
			value = -value
		}
		cpu.Acc = word.Wrap(cpu.Acc+value, word.VALUE_LIMIT)
	case word.OP_EQ_PTR, word.OP_LT_PTR, word.OP_GT_PTR:
		value, err = cpu.load(mem, cpu.P[a])
		if err == nil {
			cpu.Cond = compare(op, cpu.Acc, value)
		}
	case word.OP_EQ_IMM, word.OP_LT_IMM, word.OP_GT_IMM:
		cpu.Cond = compare(op, cpu.Acc, ir.Value())
	case word.OP_EQ_REG, word.OP_LT_REG, word.OP_GT_REG:
		cpu.Cond = compare(op, cpu.Acc, cpu.R[a])
	case word.OP_BRANCH_TRUE:
		if cpu.Cond {
			cpu.PC = a
		}
	case word.OP_BRANCH_FALSE:
		if !cpu.Cond {
			cpu.PC = a
		}
	case word.OP_BRANCH:
		cpu.PC = a
	case word.OP_TRAP:
		cpu.Trap = Trap{Number: cpu.R[a], Op: ir.Digit(1)}
		if cpu.Verbose {
			cpu.Logger.Debug("trap", "number", cpu.Trap.Number, "op", cpu.Trap.Op)
		}
	case word.OP_MOD:
		if cpu.R[b] == 0 {
			err = errors.Join(ErrDivideByZero, ErrOperand2)
			break
		}
		cpu.Acc = cpu.R[a] % cpu.R[b]
	case word.OP_HALT:
		err = ErrHalt
	}

	return
}

// compare evaluates a comparison opcode against the accumulator.
func compare(op word.Opcode, acc int, value int) bool {
	switch op {
	case word.OP_EQ_PTR, word.OP_EQ_IMM, word.OP_EQ_REG:
		return acc == value
	case word.OP_LT_PTR, word.OP_LT_IMM, word.OP_LT_REG:
		return acc < value
	default:
		return acc > value
	}
}
