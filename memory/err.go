package memory

import (
	"errors"

	"github.com/ezrec/pbrain/translate"
)

var f = translate.From

var (
	ErrAddress       = errors.New(f("address outside of memory"))
	ErrImageOverflow = errors.New(f("program image larger than its memory window"))
	ErrProgramHeader = errors.New(f("program header missing memory requirement"))
)

// ErrImageLine indicates the line of a program image that failed to parse.
type ErrImageLine struct {
	LineNo int
	Err    error
}

func (err *ErrImageLine) Error() string {
	return f("line %d %v", err.LineNo, err.Err)
}

func (err *ErrImageLine) Unwrap() error {
	return err.Err
}
