// Package cpu implements the PBrain12 processor and its assembler.
//
// The processor has an accumulator, four general registers (R0-R3), four
// pointer registers (P0-P3), a program counter relative to the base
// address register, an instruction counter that measures the remaining
// time slice, and a single comparison flag. Every memory operand is
// relocated by the base address register and checked against the limit
// register; an out of range access is reported and then performed anyway.
//
// Traps are latched into the Trap field and left for the operating
// system to service between instructions.
//
// The assembler translates mnemonic source into program images, supporting
// labels, equates, macros, and compile-time expression evaluation.
package cpu
