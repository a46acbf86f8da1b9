package machine

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/ezrec/pbrain/alloc"
	"github.com/ezrec/pbrain/cpu"
	"github.com/ezrec/pbrain/word"
)

// DUMP_WORDS_PER_LINE is the number of memory words on a dump line.
const DUMP_WORDS_PER_LINE = 10

// QueueSnapshot is the content of a process queue.
type QueueSnapshot struct {
	Name string
	Pids []int
}

// Snapshot is a copy of the machine state.
type Snapshot struct {
	Ticks   int
	Pid     int // Running process, or -1.
	Context cpu.Context
	Memory  []word.Word
	Free    []alloc.Block
	Queues  []QueueSnapshot
}

// Snapshot copies the machine state.
func (m *Machine) Snapshot() (snap *Snapshot) {
	k := m.Kernel

	snap = &Snapshot{
		Ticks:   k.Ticks,
		Pid:     k.CurrentPid(),
		Context: m.Cpu.Context,
		Memory:  m.Memory.Snapshot(),
		Free:    slices.Collect(k.FreeList.Blocks()),
	}

	for q := range k.Queues() {
		snap.Queues = append(snap.Queues, QueueSnapshot{Name: q.Name, Pids: q.Pids()})
	}

	return
}

// WriteTo writes the snapshot in dump format.
func (snap *Snapshot) WriteTo(w io.Writer) (n int64, err error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "TICK %d PID %d\n", snap.Ticks, snap.Pid)
	fmt.Fprintf(&buf, "CPU:\n%v", snap.Context.String())

	buf.WriteString("MEMORY:")
	for addr, code := range snap.Memory {
		if addr%DUMP_WORDS_PER_LINE == 0 {
			fmt.Fprintf(&buf, "\n  %03d:", addr)
		}
		fmt.Fprintf(&buf, " %v", code.String())
	}
	buf.WriteString("\n")

	buf.WriteString("FREE:")
	for _, block := range snap.Free {
		fmt.Fprintf(&buf, " %v", block)
	}
	buf.WriteString("\n")

	buf.WriteString("QUEUES:\n")
	for _, q := range snap.Queues {
		fmt.Fprintf(&buf, "  %v: %v\n", q.Name, q.Pids)
	}

	return buf.WriteTo(w)
}
