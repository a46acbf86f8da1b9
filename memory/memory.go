// Package memory implements the PBrain12 word store and program images.
package memory

import (
	"iter"
	"slices"

	"github.com/ezrec/pbrain/word"
)

// Memory is a fixed size store of words.
type Memory struct {
	words []word.Word
}

// New creates a memory of size words, all blank.
func New(size int) (mem *Memory) {
	mem = &Memory{
		words: make([]word.Word, size),
	}
	mem.Reset()

	return
}

// Reset blanks every word.
func (mem *Memory) Reset() {
	for n := range mem.words {
		mem.words[n] = word.Blank
	}
}

// Size returns the number of words in the store.
func (mem *Memory) Size() int {
	return len(mem.words)
}

func (mem *Memory) check(addr int) (err error) {
	if addr < 0 || addr >= len(mem.words) {
		err = ErrAddress
	}
	return
}

// Word returns the word at a physical address.
func (mem *Memory) Word(addr int) (w word.Word, err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	w = mem.words[addr]
	return
}

// SetWord replaces the word at a physical address.
func (mem *Memory) SetWord(addr int, w word.Word) (err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	mem.words[addr] = w
	return
}

// Value returns the four digit value field at a physical address.
func (mem *Memory) Value(addr int) (value int, err error) {
	w, err := mem.Word(addr)
	if err != nil {
		return
	}

	value = w.Value()
	return
}

// SetValue writes the four digit value field at a physical address.
// The opcode field of the word is left unchanged.
func (mem *Memory) SetValue(addr int, value int) (err error) {
	err = mem.check(addr)
	if err != nil {
		return
	}

	mem.words[addr].SetValue(value)
	return
}

// Load copies words into the window [base, base+length).
// Words past the window are dropped, and ErrImageOverflow is returned
// after the window has been filled.
func (mem *Memory) Load(base int, length int, words []word.Word) (count int, err error) {
	if length < 0 || base < 0 || base+length > len(mem.words) {
		err = ErrAddress
		return
	}

	count = copy(mem.words[base:base+length], words)
	if count < len(words) {
		err = ErrImageOverflow
	}

	return
}

// Words iterates over every address and word in the store.
func (mem *Memory) Words() iter.Seq2[int, word.Word] {
	return slices.All(mem.words)
}

// Snapshot returns a copy of the store.
func (mem *Memory) Snapshot() []word.Word {
	return slices.Clone(mem.words)
}
