package kernel

import (
	"fmt"
	"iter"
	"strings"

	"github.com/ezrec/pbrain/cpu"
	"github.com/ezrec/pbrain/word"
)

// TrapKind is the operating system service requested by a trap.
type TrapKind int

//go:generate go tool stringer -linecomment -type=TrapKind
const (
	TRAP_WAIT   = TrapKind(0) // wait
	TRAP_SIGNAL = TrapKind(1) // signal
	TRAP_PID    = TrapKind(2) // pid
	TRAP_DUMP   = TrapKind(3) // dump
)

// Defines iterates over the assembler equates of the trap numbers and
// semaphore selectors.
//
// A resource semaphore is selected by loading its index into the
// accumulator and naming a register holding zero; a gate semaphore by
// naming a register holding its selector.
func (k *Kernel) Defines() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for kind := TRAP_WAIT; kind <= TRAP_DUMP; kind++ {
			if !yield("TRAP_"+strings.ToUpper(kind.String()), fmt.Sprintf("%d", int(kind))) {
				return
			}
		}
		for n, sem := range k.Resources {
			if !yield("SEM_"+strings.ToUpper(sem.Name), fmt.Sprintf("%d", n)) {
				return
			}
		}
		for n, sem := range k.Gates {
			if !yield("GATE_"+strings.ToUpper(sem.Name), fmt.Sprintf("%d", n+1)) {
				return
			}
		}
	}
}

// register returns the general register named by a trap operand.
func (k *Kernel) register(op int) (reg *int, err error) {
	if op < 0 || op >= word.REGISTERS {
		err = ErrTrapRegister
		return
	}

	reg = &k.Cpu.R[op]
	return
}

// selectSemaphore returns the semaphore chosen by a wait or signal trap.
func (k *Kernel) selectSemaphore(op int) (sem *Semaphore, err error) {
	reg, err := k.register(op)
	if err != nil {
		return
	}

	if *reg == 0 {
		index := k.Cpu.Acc
		if index < 0 || index >= len(k.Resources) {
			err = ErrSemaphoreRange
			return
		}
		sem = k.Resources[index]
		return
	}

	if len(k.Gates) == 0 {
		err = ErrSemaphoreRange
		return
	}

	sem = k.Gates[(*reg-1)%len(k.Gates)]
	return
}

// ServiceTrap services the pending trap, then clears it.
func (k *Kernel) ServiceTrap() {
	trap := k.Cpu.Trap
	if !trap.Pending() {
		return
	}

	defer func() {
		k.Cpu.Trap = cpu.Trap{Number: cpu.TRAP_NONE}
	}()

	kind := TrapKind(trap.Number)
	pid := k.CurrentPid()

	if k.Verbose {
		k.Logger.Debug("trap", "pid", pid, "number", trap.Number, "op", trap.Op)
	}

	var err error
	switch kind {
	case TRAP_WAIT, TRAP_SIGNAL:
		var sem *Semaphore
		sem, err = k.selectSemaphore(trap.Op)
		if err != nil {
			break
		}
		if kind == TRAP_WAIT {
			k.Wait(sem)
		} else {
			err = k.Signal(sem)
		}
	case TRAP_PID:
		var reg *int
		reg, err = k.register(trap.Op)
		if err == nil {
			*reg = pid
		}
	case TRAP_DUMP:
		if k.Dump != nil {
			k.Dump()
		}
	default:
		err = ErrTrapUnknown
	}

	if err != nil && k.Messages {
		k.Logger.Warn("trap", "pid", pid, "number", trap.Number, "op", trap.Op, "error", err)
	}
}
