package cpu

import (
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/ezrec/pbrain/memory"
	"github.com/ezrec/pbrain/word"
)

// Statement is a line of assembled code with its source location and word.
type Statement struct {
	LineNo    int
	Pc        int
	Words     []string
	Code      word.Word
	LinkLabel string // Label written into the word once all labels are known.
	LinkField int    // Offset of the linked field in the word.
	LinkWidth int    // Digits in the linked field.
}

// Program is the output of the assembler.
type Program struct {
	MemRequired int
	Statements  []Statement
}

// Debug returns the statement that assembled the word at pc, or nil.
func (prog *Program) Debug(pc int) (stmt *Statement) {
	for n, st := range prog.Statements {
		if st.Pc == pc {
			stmt = &prog.Statements[n]
			break
		}
	}

	return
}

// Codes iterates over the program counter and word of each statement.
func (prog *Program) Codes() iter.Seq2[int, word.Word] {
	return func(yield func(pc int, code word.Word) bool) {
		for _, st := range prog.Statements {
			if !yield(st.Pc, st.Code) {
				return
			}
		}
	}
}

// Image returns the loadable form of the program.
func (prog *Program) Image() (img *memory.Image) {
	img = &memory.Image{
		MemRequired: prog.MemRequired,
	}
	for _, code := range prog.Codes() {
		img.Words = append(img.Words, code)
	}

	return
}

// WriteTo writes the program in program file format.
func (prog *Program) WriteTo(w io.Writer) (n int64, err error) {
	return prog.Image().WriteTo(w)
}

// Listing writes each word next to the source that produced it.
func (prog *Program) Listing(w io.Writer) (err error) {
	for _, st := range prog.Statements {
		_, err = fmt.Fprintf(w, "%02d: %v  ; %4d: %v\n", st.Pc, st.Code.String(), st.LineNo, strings.Join(st.Words, " "))
		if err != nil {
			return
		}
	}

	return
}
