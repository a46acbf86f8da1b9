package cpu

import (
	"errors"

	"github.com/ezrec/pbrain/translate"
	"github.com/ezrec/pbrain/word"
)

var f = translate.From

var (
	// Cpu errors
	ErrHalt            = errors.New(f("halt"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrPointerInvalid  = errors.New(f("pointer register invalid"))
	ErrRegisterInvalid = errors.New(f("register invalid"))
	ErrAddressInvalid  = errors.New(f("direct address outside of memory"))
	ErrDivideByZero    = errors.New(f("modulo by zero"))
	ErrMemory          = errors.New(f("memory access outside of physical memory"))

	// Operand markers
	ErrOperand1 = errors.New(f("operand 1"))
	ErrOperand2 = errors.New(f("operand 2"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrMemSyntax          = errors.New(f(".mem syntax"))
	ErrMemTooSmall        = errors.New(f(".mem smaller than program"))
	ErrWordSyntax         = errors.New(f(".word syntax"))
	ErrRawSyntax          = errors.New(f(".raw syntax"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

var operandErr = [2]error{ErrOperand1, ErrOperand2}

// ErrInstruction locates a fault at an instruction.
type ErrInstruction struct {
	PC  int       // Program counter of the faulting instruction.
	IR  word.Word // Faulting instruction.
	Err error
}

func (err *ErrInstruction) Error() string {
	return f("pc %02d ir %v: %v", err.PC, err.IR.String(), err.Err)
}

func (err *ErrInstruction) Unwrap() error {
	return err.Err
}

// ErrAddressRange reports an effective address outside of the process window.
type ErrAddressRange struct {
	EAR int
	BAR int
	LR  int
}

func (err ErrAddressRange) Error() string {
	return f("effective address %03d outside of %03d..%03d", err.EAR, err.BAR, err.LR)
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseOperand string

func (err ErrParseOperand) Error() string {
	return f("'%v' is not a valid operand", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrValueRange reports an operand that does not fit its field.
type ErrValueRange struct {
	Value int
	Limit int
}

func (err ErrValueRange) Error() string {
	return f("value %d outside of 0..%d", err.Value, err.Limit-1)
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
