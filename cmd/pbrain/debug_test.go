package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/pbrain/config"
	"github.com/ezrec/pbrain/machine"
)

func newTestDebugger(t *testing.T, sources ...string) (d *debugger, buf *bytes.Buffer) {
	cfg := config.Default()
	cfg.MemorySize = 50
	cfg.TimeSlice = 2

	m := machine.New(cfg, nil)
	for n, source := range sources {
		prog, err := m.Assemble(strings.NewReader(source))
		if !assert.NoError(t, err) {
			t.FailNow()
		}
		_, err = m.QueueProgram(string(rune('a'+n)), prog)
		assert.NoError(t, err)
	}
	m.Start()

	buf = &bytes.Buffer{}
	d = newDebugger(m, buf, false)
	return
}

func TestDebuggerStep(t *testing.T) {
	assert := assert.New(t)

	d, buf := newTestDebugger(t, "ldai 7\nhalt\n")

	assert.NoError(d.execute("step"))
	assert.Equal(7, d.m.Cpu.Acc)

	buf.Reset()
	assert.NoError(d.execute("regs"))
	assert.Contains(buf.String(), "PID 0\n")
	assert.Contains(buf.String(), "ACC=0007")

	buf.Reset()
	assert.NoError(d.execute("step 5"))
	assert.True(d.done)
	assert.Equal("done\n", buf.String())

	buf.Reset()
	assert.NoError(d.execute("stats"))
	assert.Contains(buf.String(), "Process 0: start = 0, end = 2, duration = 2\n")
}

func TestDebuggerInspect(t *testing.T) {
	assert := assert.New(t)

	d, buf := newTestDebugger(t, ".mem 20\nhalt\n", ".mem 40\nhalt\n")

	assert.NoError(d.execute("queues"))
	assert.Contains(buf.String(), "new: [1]\n")
	assert.Contains(buf.String(), "ready: [0]\n")

	buf.Reset()
	assert.NoError(d.execute("free"))
	assert.Equal("{20,30}\n", buf.String())

	buf.Reset()
	assert.NoError(d.execute("mem 0 2"))
	assert.Equal("000: 990000  halt\n001: ZZZZZZ  .raw ZZZZZZ\n", buf.String())

	buf.Reset()
	assert.NoError(d.execute("proc 0"))
	assert.Contains(buf.String(), "pid 0 'a' queue ready block {0,20}\n")
	assert.Contains(buf.String(), "Cond:")

	buf.Reset()
	assert.NoError(d.execute("proc 9"))
	assert.Equal("pid 9: not found\n", buf.String())

	buf.Reset()
	assert.NoError(d.execute("dump"))
	assert.Contains(buf.String(), "MEMORY:\n  000: 990000")

	// Killing the running process admits the waiting one.
	assert.NoError(d.execute("kill 0"))
	assert.Equal(1, d.m.Kernel.CurrentPid())
	assert.False(d.done)

	assert.NoError(d.execute("run"))
	assert.True(d.done)
}

func TestDebuggerErrors(t *testing.T) {
	assert := assert.New(t)

	d, buf := newTestDebugger(t, "halt\n")

	table := [](struct {
		line string
		err  error
	}){
		{"", nil},
		{"bogus", ErrCommand},
		{"step x", ErrArgument},
		{"step -1", ErrArgument},
		{"mem", ErrArgument},
		{"mem zz", ErrArgument},
		{"proc", ErrArgument},
		{"kill x", ErrArgument},
	}

	for _, entry := range table {
		err := d.execute(entry.line)
		if entry.err == nil {
			assert.NoError(err, entry.line)
		} else {
			assert.ErrorIs(err, entry.err, entry.line)
		}
	}

	assert.Error(d.execute("mem 100"))
	assert.Error(d.execute("kill 7"))

	buf.Reset()
	assert.NoError(d.execute("help"))
	assert.Contains(buf.String(), "  step [n]: execute n instructions\n")

	assert.False(d.exit)
	assert.NoError(d.execute("quit"))
	assert.True(d.exit)
}
