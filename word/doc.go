// Package word implements the PBrain12 memory word.
//
// A word is six characters. The first two are a decimal opcode, the
// remaining four are either two operand specifiers (a 'P' or 'R' tag
// followed by a register digit, or a two digit address) or a single four
// digit immediate value. Unwritten memory reads as ZZZZZZ.
package word
