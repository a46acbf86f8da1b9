package machine

import (
	"github.com/ezrec/pbrain/translate"
)

var f = translate.From

// ErrRuntime indicates the process and source line of a runtime fault.
type ErrRuntime struct {
	Pid     int
	Program string
	LineNo  int // Source line, or 0 if the program was loaded as an image.
	Err     error
}

func (err *ErrRuntime) Error() string {
	if err.LineNo == 0 {
		return f("process %d '%v': %v", err.Pid, err.Program, err.Err)
	}
	return f("process %d '%v' line %d: %v", err.Pid, err.Program, err.LineNo, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrLoad indicates the program file that failed to load.
type ErrLoad struct {
	Name string
	Err  error
}

func (err *ErrLoad) Error() string {
	return f("%v: %v", err.Name, err.Err)
}

func (err *ErrLoad) Unwrap() error {
	return err.Err
}
