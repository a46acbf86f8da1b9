package kernel

import (
	"errors"

	"github.com/ezrec/pbrain/translate"
)

var f = translate.From

var (
	ErrProcessSize    = errors.New(f("memory requirement outside of memory"))
	ErrProcessMissing = errors.New(f("process not found"))
	ErrProcessKilled  = errors.New(f("process killed"))
	ErrQueueMember    = errors.New(f("process already queued"))
	ErrSemaphoreEmpty = errors.New(f("semaphore signalled with no waiter"))
	ErrSemaphoreRange = errors.New(f("semaphore selector out of range"))
	ErrTrapUnknown    = errors.New(f("trap number unknown"))
	ErrTrapRegister   = errors.New(f("trap register invalid"))
	ErrDeadlock       = errors.New(f("ready queue empty with blocked processes"))
)

// ErrProcess locates an error at a process.
type ErrProcess struct {
	Pid     int
	Program string
	Err     error
}

func (err *ErrProcess) Error() string {
	return f("process %d '%v': %v", err.Pid, err.Program, err.Err)
}

func (err *ErrProcess) Unwrap() error {
	return err.Err
}
