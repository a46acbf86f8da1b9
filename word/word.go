package word

import (
	"fmt"
	"strings"
)

const (
	SIZE          = 6     // Characters in a word.
	REGISTERS     = 4     // Pointer and general registers per kind.
	VALUE_LIMIT   = 10000 // Values wrap at this limit.
	POINTER_LIMIT = 100   // Pointer registers and addresses wrap at this limit.

	TAG_POINTER  = 'P' // Pointer register operand tag.
	TAG_REGISTER = 'R' // General register operand tag.
	TAG_BLANK    = 'Z' // Fill character of unwritten memory.
)

// Word is a single PBrain12 memory cell.
type Word [SIZE]byte

// Blank is the content of unwritten memory.
var Blank = Word{TAG_BLANK, TAG_BLANK, TAG_BLANK, TAG_BLANK, TAG_BLANK, TAG_BLANK}

// Decode a fixed width decimal digit string.
func Decode(digits []byte) (value int) {
	for _, c := range digits {
		value = value*10 + int(c-'0')
	}
	return
}

// Encode a value into a fixed width decimal digit string.
// The value is reduced modulo 10^len(dst), and is never negative.
func Encode(dst []byte, value int) {
	limit := 1
	for range dst {
		limit *= 10
	}
	value %= limit
	if value < 0 {
		value += limit
	}
	for n := len(dst) - 1; n >= 0; n-- {
		dst[n] = byte('0' + value%10)
		value /= 10
	}
}

// Parse a word from the first SIZE characters of text.
func Parse(text string) (w Word, ok bool) {
	if len(text) < SIZE {
		return
	}

	copy(w[:], text)
	ok = true
	return
}

// Wrap reduces value into [0, limit).
func Wrap(value int, limit int) int {
	value %= limit
	if value < 0 {
		value += limit
	}
	return value
}

// Opcode returns the opcode field of the word.
func (w Word) Opcode() Opcode {
	return Opcode(Decode(w[0:2]))
}

// Operand returns operand n (0 or 1) as a two digit number.
func (w Word) Operand(n int) int {
	return Decode(w[2+2*n : 4+2*n])
}

// Value returns the four digit value field of the word.
func (w Word) Value() int {
	return Decode(w[2:6])
}

// SetValue replaces the four digit value field of the word.
func (w *Word) SetValue(value int) {
	Encode(w[2:6], value)
}

// Digit returns the register digit of operand n, ignoring its tag.
func (w Word) Digit(n int) int {
	return int(w[3+2*n]) - '0'
}

func (w Word) register(n int, tag byte) (index int, ok bool) {
	if w[2+2*n] != tag {
		return
	}

	index = w.Digit(n)
	if index < 0 || index >= REGISTERS {
		return
	}

	ok = true
	return
}

// Pointer returns the pointer register selected by operand n.
func (w Word) Pointer(n int) (index int, ok bool) {
	return w.register(n, TAG_POINTER)
}

// Register returns the general register selected by operand n.
func (w Word) Register(n int) (index int, ok bool) {
	return w.register(n, TAG_REGISTER)
}

// String returns the raw characters of the word.
func (w Word) String() string {
	return string(w[:])
}

// Make builds a word from an opcode and its operand characters.
// Missing operand characters are filled with '0', extra ones are dropped.
func Make(op Opcode, operands ...string) (w Word) {
	Encode(w[0:2], int(op))
	tail := strings.Join(operands, "")
	for n := range SIZE - 2 {
		if n < len(tail) {
			w[2+n] = tail[n]
		} else {
			w[2+n] = '0'
		}
	}
	return
}

// MakeValue builds a data word holding a four digit value.
func MakeValue(value int) (w Word) {
	w = Make(0)
	w.SetValue(value)
	return
}

// PointerOperand formats a pointer register operand.
func PointerOperand(index int) string {
	return fmt.Sprintf("%c%d", TAG_POINTER, index)
}

// RegisterOperand formats a general register operand.
func RegisterOperand(index int) string {
	return fmt.Sprintf("%c%d", TAG_REGISTER, index)
}

// AddressOperand formats a two digit operand.
func AddressOperand(addr int) string {
	var tmp [2]byte
	Encode(tmp[:], addr)
	return string(tmp[:])
}

// ValueOperand formats a four digit operand.
func ValueOperand(value int) string {
	var tmp [4]byte
	Encode(tmp[:], value)
	return string(tmp[:])
}

// Disassemble returns the assembly language form of the word.
// Words that are not instructions are rendered as .raw data.
func (w Word) Disassemble() (text string) {
	op := w.Opcode()
	if !op.Valid() {
		text = fmt.Sprintf(".raw %v", w.String())
		return
	}

	a := string(w[2:4])
	b := string(w[4:6])

	switch op.Format() {
	case FORMAT_NONE:
		text = op.String()
	case FORMAT_PTR_IMM, FORMAT_REG_PTR, FORMAT_REG_ADDR, FORMAT_REG_REG, FORMAT_TRAP:
		text = fmt.Sprintf("%v %v %v", op, a, b)
	case FORMAT_PTR, FORMAT_ADDR, FORMAT_REG:
		text = fmt.Sprintf("%v %v", op, a)
	case FORMAT_IMM:
		text = fmt.Sprintf("%v %v", op, a+b)
	}

	return
}
