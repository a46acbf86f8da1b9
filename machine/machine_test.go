package machine

import (
	"bytes"
	"context"
	"errors"
	"maps"
	"os"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/pbrain/config"
	"github.com/ezrec/pbrain/cpu"
	"github.com/ezrec/pbrain/memory"
)

func newTestMachine(size int, slice int) *Machine {
	cfg := config.Default()
	cfg.MemorySize = size
	cfg.TimeSlice = slice

	return New(cfg, nil)
}

func runTestMachine(t *testing.T, m *Machine) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	assert.NoError(t, m.Run(ctx))
}

func TestMachine(t *testing.T) {
	assert := assert.New(t)

	m := newTestMachine(100, 0)
	assert.False(m.Verbose)
	assert.Equal(100, m.Memory.Size())
	assert.Equal(100, m.Kernel.FreeList.Available())
	assert.Same(m.Cpu, m.Kernel.Cpu)

	defines := maps.Collect(m.Defines())
	assert.Equal("100", defines["MEMORY_SIZE"])
	assert.Equal("2", defines["TRAP_PID"])
	assert.Equal("1", defines["GATE_DOORMAN"])

	done, err := m.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestMachineAssemble(t *testing.T) {
	assert := assert.New(t)

	m := newTestMachine(100, 0)
	prog, err := m.Assemble(strings.NewReader(`
        ldr0 TRAP_SIGNAL
        ldai SEM_FORK3
        ldr0 MEMORY_SIZE
        halt
`))
	if !assert.NoError(err) {
		return
	}

	var list []string
	for _, code := range prog.Codes() {
		list = append(list, code.String())
	}
	assert.Equal([]string{"120001", "030003", "120100", "990000"}, list)
}

func TestMachineWordData(t *testing.T) {
	assert := assert.New(t)

	m := newTestMachine(100, 0)
	prog, err := m.Assemble(strings.NewReader(`
        ldad value
        addd offset
        stad result
        halt
value:  .word 1234
offset: .word $(MEMORY_SIZE*10)
result: .word 0
`))
	if !assert.NoError(err) {
		return
	}

	_, err = m.QueueProgram("data", prog)
	assert.NoError(err)
	m.Start()
	runTestMachine(t, m)

	assert.Equal(cpu.HALT, m.Kernel.Stats()[0].Status)

	value, err := m.Memory.Value(4)
	assert.NoError(err)
	assert.Equal(1234, value)

	value, err = m.Memory.Value(6)
	assert.NoError(err)
	assert.Equal(2234, value)
}

func TestMachineNoSliceRange(t *testing.T) {
	assert := assert.New(t)

	cfg := config.Default()
	cfg.MemorySize = 100
	cfg.MaxSlice = 0

	m := New(cfg, nil)
	prog, err := m.Assemble(strings.NewReader("ldai 1\nhalt\n"))
	if !assert.NoError(err) {
		return
	}
	_, err = m.QueueProgram("one", prog)
	assert.NoError(err)
	m.Start()

	runTestMachine(t, m)
	assert.Equal(cpu.HALT, m.Kernel.Stats()[0].Status)
}

func TestMachineFault(t *testing.T) {
	assert := assert.New(t)

	m := newTestMachine(100, 0)
	prog, err := m.Assemble(strings.NewReader("ldr0 0\nmod R0 R0\nhalt\n"))
	if !assert.NoError(err) {
		return
	}

	pid, err := m.QueueProgram("divide", prog)
	assert.NoError(err)
	assert.Equal(1, m.Start())
	assert.Equal(1, m.LineNo())

	done, err := m.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(2, m.LineNo())

	done, err = m.Tick()
	assert.True(done)
	assert.ErrorIs(err, cpu.ErrDivideByZero)

	var runtime *ErrRuntime
	if assert.ErrorAs(err, &runtime) {
		assert.Equal(pid, runtime.Pid)
		assert.Equal("divide", runtime.Program)
		assert.Equal(2, runtime.LineNo)
	}

	st := m.Kernel.Stats()[pid]
	assert.Equal(cpu.FAULT, st.Status)
	assert.Equal(100, m.Kernel.FreeList.Available())
}

func TestMachineImageFault(t *testing.T) {
	assert := assert.New(t)

	m := newTestMachine(100, 0)
	_, err := m.Queue("bad", &memory.Image{MemRequired: 2, Words: nil})
	assert.NoError(err)
	m.Start()

	// Blank memory is not an instruction.
	done, err := m.Tick()
	assert.True(done)
	assert.ErrorIs(err, cpu.ErrOpcodeInvalid)

	var runtime *ErrRuntime
	if assert.ErrorAs(err, &runtime) {
		assert.Equal(0, runtime.LineNo)
		assert.NotContains(runtime.Error(), "line")
	}
}

func TestMachineQueueDir(t *testing.T) {
	assert := assert.New(t)

	fsys := fstest.MapFS{
		"progs/a.pb":     {Data: []byte("5\n990000\n")},
		"progs/b.asm":    {Data: []byte("halt\n")},
		"progs/c.pb":     {Data: []byte("no header\n990000\n")},
		"progs/sub/d.pb": {Data: []byte("5\n990000\n")},
	}

	m := newTestMachine(100, 0)
	pids, err := m.QueueDir(fsys, "progs")
	assert.Equal([]int{0, 1}, pids)
	assert.ErrorIs(err, memory.ErrProgramHeader)

	var load *ErrLoad
	if assert.ErrorAs(err, &load) {
		assert.Equal("progs/c.pb", load.Name)
	}

	stats := m.Kernel.Stats()
	assert.Equal("progs/a.pb", stats[0].Program)
	assert.Equal(5, stats[0].Memory)
	assert.Equal("progs/b.asm", stats[1].Program)
	assert.Equal(1, stats[1].Memory)

	_, err = m.QueueDir(fsys, "missing")
	assert.Error(err)

	_, err = m.QueueFile(fsys, "progs/missing.pb")
	assert.ErrorIs(err, os.ErrNotExist)
}

func TestMachineRunCount(t *testing.T) {
	assert := assert.New(t)

	m := newTestMachine(100, 4)
	pids, err := m.QueueDir(os.DirFS("../testdata"), "count")
	if !assert.NoError(err) {
		return
	}
	assert.Equal([]int{0, 1}, pids)
	assert.Equal(2, m.Start())

	runTestMachine(t, m)

	for _, st := range m.Kernel.Stats() {
		assert.True(st.Finished, st.Program)
		assert.Equal(cpu.HALT, st.Status, st.Program)
	}

	// count.pb ran in [0,10), sum.asm in [10,30).
	value, err := m.Memory.Value(6)
	assert.NoError(err)
	assert.Equal(5, value)

	value, err = m.Memory.Value(10 + 13)
	assert.NoError(err)
	assert.Equal(10, value)

	assert.Equal(0, m.Cpu.RangeFaults)
}

func TestMachineDiningPhilosophers(t *testing.T) {
	assert := assert.New(t)

	m := newTestMachine(1000, 0)
	pids, err := m.QueueDir(os.DirFS("../testdata"), "dining")
	if !assert.NoError(err) {
		return
	}
	assert.Len(pids, 5)
	assert.Equal(5, m.Start())

	runTestMachine(t, m)

	for _, st := range m.Kernel.Stats() {
		assert.True(st.Finished, st.Program)
		assert.Equal(cpu.HALT, st.Status, st.Program)
		assert.Empty(st.Fault, st.Program)
	}

	for sem := range m.Kernel.Semaphores() {
		assert.True(sem.Blocked.Empty(), sem.Name)
		if sem.Gate {
			assert.Equal(4, sem.Count, sem.Name)
		} else {
			assert.Equal(1, sem.Count, sem.Name)
		}
	}

	assert.Equal(1000, m.Kernel.FreeList.Available())
}

func TestMachineRunCancel(t *testing.T) {
	assert := assert.New(t)

	m := newTestMachine(100, 0)
	prog, err := m.Assemble(strings.NewReader("spin: bru spin\n"))
	if !assert.NoError(err) {
		return
	}
	_, err = m.QueueProgram("spin", prog)
	assert.NoError(err)
	m.Start()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = m.Run(ctx)
	assert.True(errors.Is(err, context.Canceled))
	assert.Equal(0, m.Kernel.Ticks)
}

func TestMachineDump(t *testing.T) {
	assert := assert.New(t)

	m := newTestMachine(20, 0)
	prog, err := m.Assemble(strings.NewReader(`
        ldr0 TRAP_DUMP
        trap R0 R0
        halt
`))
	if !assert.NoError(err) {
		return
	}
	_, err = m.QueueProgram("dump", prog)
	assert.NoError(err)
	m.Start()

	var snaps []*Snapshot
	m.Dumper = func(snap *Snapshot) {
		snaps = append(snaps, snap)
	}

	runTestMachine(t, m)

	if !assert.Len(snaps, 1) {
		return
	}

	snap := snaps[0]
	assert.Equal(0, snap.Pid)
	assert.Equal(2, snap.Ticks)
	assert.Equal(2, snap.Context.PC)
	assert.Len(snap.Memory, 20)
	assert.Equal("120003", snap.Memory[0].String())
	assert.Len(snap.Free, 1)
	assert.Equal(3, snap.Free[0].Address)
	assert.Equal(QueueSnapshot{Name: "ready", Pids: []int{0}}, snap.Queues[1])

	var buf bytes.Buffer
	_, err = snap.WriteTo(&buf)
	assert.NoError(err)

	text := buf.String()
	assert.Contains(text, "TICK 2 PID 0\n")
	assert.Contains(text, "CPU:\n  PC=02")
	assert.Contains(text, "MEMORY:\n  000: 120003 36R0R0 990000 ZZZZZZ")
	assert.Contains(text, "\n  010: ZZZZZZ")
	assert.Contains(text, "FREE: {3,17}\n")
	assert.Contains(text, "  ready: [0]\n")
}
