// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package machine assembles the PBrain12 CPU, memory and kernel into a
// runnable system.
package machine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"path"

	"github.com/hashicorp/go-hclog"

	"github.com/ezrec/pbrain/config"
	"github.com/ezrec/pbrain/cpu"
	"github.com/ezrec/pbrain/kernel"
	"github.com/ezrec/pbrain/memory"
)

// EXT_SOURCE is the file extension of assembler source programs.
// Files with any other extension are read as program images.
const EXT_SOURCE = ".asm"

// Machine state. CPU + memory + kernel.
type Machine struct {
	Verbose  bool // If set, enables verbose logging.
	*cpu.Cpu      // Reference to the CPU simulation.
	Memory   *memory.Memory
	Kernel   *kernel.Kernel
	Logger   hclog.Logger
	Dumper   func(snap *Snapshot) // Called by the dump trap.

	sources map[int]*cpu.Program // Assembled programs, by pid.
}

// New creates a machine for the configuration.
// A nil logger discards all logging.
func New(cfg config.Config, logger hclog.Logger) (m *Machine) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	m = &Machine{
		Verbose: cfg.Verbose,
		Cpu:     cpu.NewCpu(),
		Memory:  memory.New(cfg.MemorySize),
		Logger:  logger,
		sources: map[int]*cpu.Program{},
	}

	m.Cpu.Verbose = cfg.Verbose
	m.Cpu.Messages = cfg.Messages
	m.Cpu.Logger = logger.Named("cpu")

	m.Kernel = kernel.New(cfg, m.Cpu, m.Memory)
	m.Kernel.SetLogger(logger.Named("kernel"))
	m.Kernel.Dump = func() {
		if m.Dumper != nil {
			m.Dumper(m.Snapshot())
		}
	}

	return
}

// Defines returns an iterator over the assembler predefines of the machine.
func (m *Machine) Defines() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if !yield("MEMORY_SIZE", fmt.Sprintf("%d", m.Memory.Size())) {
			return
		}
		for equ, value := range m.Kernel.Defines() {
			if !yield(equ, value) {
				return
			}
		}
	}
}

// Assemble a source program, with the machine's predefines.
func (m *Machine) Assemble(input io.Reader) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{
		Verbose: m.Verbose,
		Logger:  m.Logger.Named("asm"),
	}
	for equ, value := range m.Defines() {
		asm.Predefine(equ, value)
	}

	prog, err = asm.Parse(input)
	return
}

// Queue a program image as a new process.
func (m *Machine) Queue(name string, img *memory.Image) (pid int, err error) {
	return m.Kernel.Queue(name, img)
}

// QueueProgram queues an assembled program as a new process. Its faults
// are reported with source line numbers.
func (m *Machine) QueueProgram(name string, prog *cpu.Program) (pid int, err error) {
	pid, err = m.Queue(name, prog.Image())
	if err != nil {
		return
	}

	m.sources[pid] = prog
	return
}

// QueueFile queues a program file, assembling it if it is source.
func (m *Machine) QueueFile(fsys fs.FS, name string) (pid int, err error) {
	defer func() {
		if err != nil {
			err = &ErrLoad{Name: name, Err: err}
		}
	}()

	file, err := fsys.Open(name)
	if err != nil {
		return
	}
	defer file.Close()

	if path.Ext(name) == EXT_SOURCE {
		var prog *cpu.Program
		prog, err = m.Assemble(file)
		if err != nil {
			return
		}
		pid, err = m.QueueProgram(name, prog)
		return
	}

	img, err := memory.ParseImage(file)
	if err != nil {
		return
	}

	pid, err = m.Queue(name, img)
	return
}

// QueueDir queues every regular file of a directory, in name order.
// A file that fails to load is skipped and its error is returned after the
// rest have been queued.
func (m *Machine) QueueDir(fsys fs.FS, dir string) (pids []int, err error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		err = &ErrLoad{Name: dir, Err: err}
		return
	}

	var errs []error
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}

		pid, err := m.QueueFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		pids = append(pids, pid)
	}

	err = errors.Join(errs...)
	return
}

// Start admits the queued programs, and returns how many are ready.
func (m *Machine) Start() (readied int) {
	readied = m.Kernel.Start()

	if m.Verbose {
		m.Logger.Info("start", "readied", readied, "waiting", m.Kernel.New.Len())
	}

	return
}

// LineNo returns the source line of the running process's next
// instruction, or 0 if it is not known.
func (m *Machine) LineNo() int {
	prog, ok := m.sources[m.Kernel.CurrentPid()]
	if !ok {
		return 0
	}

	st := prog.Debug(m.Cpu.PC)
	if st == nil {
		return 0
	}

	return st.LineNo
}

// Tick executes one instruction of the running process, then one tick of
// the kernel. A fault of the process is returned after the kernel has
// terminated it.
func (m *Machine) Tick() (done bool, err error) {
	k := m.Kernel

	h, ok := k.Ready.Head()
	if !ok {
		done = true
		return
	}

	proc := k.Table.Get(h)
	pid, program := proc.Pid, proc.Program
	lineno := m.LineNo()

	status, fault := m.Cpu.Step(m.Memory)
	if status == cpu.FAULT {
		err = &ErrRuntime{Pid: pid, Program: program, LineNo: lineno, Err: fault}
	}

	done = k.Tick(status, fault)
	return
}

// Run ticks the machine until no process is left, or ctx is done.
// Process faults are logged, and do not stop the run.
func (m *Machine) Run(ctx context.Context) (err error) {
	for {
		err = ctx.Err()
		if err != nil {
			return
		}

		done, fault := m.Tick()
		if fault != nil && m.Verbose {
			m.Logger.Debug("terminated", "error", fault)
		}
		if done {
			break
		}
	}

	if m.Verbose {
		m.Logger.Info("done", "ticks", m.Kernel.Ticks)
	}

	return
}
