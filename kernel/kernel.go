// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package kernel

import (
	"errors"
	"iter"
	"math/rand/v2"
	"slices"

	"github.com/hashicorp/go-hclog"

	"github.com/ezrec/pbrain/alloc"
	"github.com/ezrec/pbrain/config"
	"github.com/ezrec/pbrain/cpu"
	"github.com/ezrec/pbrain/internal"
	"github.com/ezrec/pbrain/memory"
)

// Stat is the run record of a process.
type Stat struct {
	Pid      int
	Program  string
	Memory   int        // Words requested.
	Start    int        // Tick of admission.
	End      int        // Tick of termination.
	Admitted bool       // Set once the process was given memory.
	Finished bool       // Set once the process terminated.
	Status   cpu.Status // How the process terminated.
	Fault    string     // Fault that terminated the process, if any.
}

// Duration returns the ticks between admission and termination.
func (st Stat) Duration() int {
	return st.End - st.Start
}

// Kernel is the PBrain12 operating system.
//
// The head of the ready queue is the running process: its registers are
// live in the CPU, and every change of head saves the CPU into the old
// head's control block and loads the new head's.
type Kernel struct {
	Verbose  bool         // If set, narrates scheduling.
	Messages bool         // If set, reports diagnostics.
	Logger   hclog.Logger // Destination of narration and diagnostics.
	Dump     func()       // Called by the dump trap.

	Cpu      *cpu.Cpu
	Memory   *memory.Memory
	FreeList *alloc.FreeList

	Table     Table
	New       *Queue // Queued processes waiting for memory.
	Ready     *Queue // Resident processes; the head is running.
	Resources []*Semaphore
	Gates     []*Semaphore

	Ticks int

	config  config.Config
	nextPid int
	stats   []Stat
	rng     *rand.Rand
}

// New creates a kernel managing the CPU and memory.
func New(cfg config.Config, c *cpu.Cpu, mem *memory.Memory) (k *Kernel) {
	k = &Kernel{
		Verbose:  cfg.Verbose,
		Messages: cfg.Messages,
		Logger:   hclog.NewNullLogger(),
		Cpu:      c,
		Memory:   mem,
		FreeList: alloc.NewFreeList(mem.Size()),
		config:   cfg,
		rng:      rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
	}

	k.FreeList.Verbose = cfg.Verbose
	k.New = k.Table.NewQueue("new")
	k.Ready = k.Table.NewQueue("ready")

	for _, entry := range cfg.Semaphores {
		sem := &Semaphore{
			Name:    entry.Name,
			Count:   entry.Count,
			Gate:    entry.Gate,
			Blocked: k.Table.NewQueue(entry.Name),
		}
		if sem.Gate {
			k.Gates = append(k.Gates, sem)
		} else {
			k.Resources = append(k.Resources, sem)
		}
	}

	return
}

// SetLogger directs the kernel's and free list's logging to logger.
func (k *Kernel) SetLogger(logger hclog.Logger) {
	k.Logger = logger
	k.FreeList.Logger = logger.Named("alloc")
}

// Semaphores iterates over the resource and then the gate semaphores.
func (k *Kernel) Semaphores() iter.Seq[*Semaphore] {
	return internal.IterSeqConcat(slices.Values(k.Resources), slices.Values(k.Gates))
}

// Queues iterates over the new, ready and semaphore queues.
func (k *Kernel) Queues() iter.Seq[*Queue] {
	return func(yield func(*Queue) bool) {
		if !yield(k.New) || !yield(k.Ready) {
			return
		}
		for sem := range k.Semaphores() {
			if !yield(sem.Blocked) {
				return
			}
		}
	}
}

// slice returns the length of a new time slice.
func (k *Kernel) slice() int {
	if k.config.TimeSlice > 0 {
		return k.config.TimeSlice
	}

	// An unvalidated configuration may have no random range.
	if k.config.MaxSlice <= 0 {
		return 1
	}

	return 1 + k.rng.IntN(k.config.MaxSlice)
}

// Queue creates a process for a program image and appends it to the new
// queue. It is admitted by the next call to Admit.
func (k *Kernel) Queue(program string, img *memory.Image) (pid int, err error) {
	if img.MemRequired <= 0 || img.MemRequired > k.Memory.Size() {
		err = &ErrProcess{Pid: -1, Program: program, Err: ErrProcessSize}
		return
	}

	pid = k.nextPid
	k.nextPid++

	proc := Process{
		Pid:         pid,
		Program:     program,
		MemRequired: img.MemRequired,
		Context:     cpu.NewContext(),
		Image:       img,
		QueuedAt:    k.Ticks,
	}
	proc.Context.IC = k.slice()

	h := k.Table.Create(proc)
	k.New.PushBack(h)

	k.stats = append(k.stats, Stat{
		Pid:     pid,
		Program: program,
		Memory:  img.MemRequired,
	})

	if k.Verbose {
		k.Logger.Debug("queued", "pid", pid, "program", program, "memory", img.MemRequired, "ic", proc.Context.IC)
	}

	return
}

// Start admits the first programs.
func (k *Kernel) Start() (readied int) {
	return k.Admit()
}

// Admit moves processes from the new queue to the ready queue, in order,
// while memory can be allocated for them.
func (k *Kernel) Admit() (readied int) {
	for !k.New.Empty() {
		h, _ := k.New.Head()
		proc := k.Table.Get(h)

		block, ok := k.FreeList.Allocate(k.config.Policy, proc.MemRequired)
		if !ok {
			return
		}

		proc.Block = block
		proc.Resident = true
		proc.Context.BAR = block.Address
		proc.Context.LR = block.Address + block.Length

		_, err := k.Memory.Load(block.Address, block.Length, proc.Image.Words)
		if err != nil && k.Messages {
			k.Logger.Warn("load", "pid", proc.Pid, "program", proc.Program,
				"error", &ErrProcess{Pid: proc.Pid, Program: proc.Program, Err: err})
		}

		proc.WaitTime = k.Ticks

		stat := &k.stats[proc.Pid]
		stat.Start = k.Ticks
		stat.Admitted = true

		if k.Verbose {
			k.Logger.Debug("readied", "pid", proc.Pid, "program", proc.Program,
				"address", block.Address, "length", block.Length, "wait", proc.WaitTime)
		}

		k.MoveToReady(k.New, proc.Pid)
		readied++
	}

	return
}

// CurrentPid returns the pid of the running process, or -1.
func (k *Kernel) CurrentPid() int {
	h, ok := k.Ready.Head()
	if !ok {
		return -1
	}

	return k.Table.Get(h).Pid
}

// load makes the head of the ready queue the live context.
func (k *Kernel) load() {
	h, ok := k.Ready.Head()
	if !ok {
		return
	}

	proc := k.Table.Get(h)
	k.Cpu.Context = proc.Context

	if k.Verbose {
		k.Logger.Debug("running", "pid", proc.Pid, "program", proc.Program, "ic", k.Cpu.IC)
	}
}

// save stores the live context into the head of the ready queue.
func (k *Kernel) save() {
	h, ok := k.Ready.Head()
	if !ok {
		return
	}

	k.Table.Get(h).Context = k.Cpu.Context
}

// MoveToReady moves a process from source to the tail of the ready queue.
func (k *Kernel) MoveToReady(source *Queue, pid int) (ok bool) {
	h, ok := source.Remove(pid)
	if !ok {
		return
	}

	if k.Verbose {
		k.Logger.Debug("to ready", "pid", pid, "from", source.Name)
	}

	k.Ready.PushBack(h)
	if head, _ := k.Ready.Head(); head == h {
		k.load()
	}

	return
}

// MoveFromReady moves a process from the ready queue to the tail of dest.
func (k *Kernel) MoveFromReady(dest *Queue, pid int) (ok bool) {
	current, _ := k.Ready.Head()
	if current != NO_HANDLE && k.Table.Get(current).Pid == pid {
		k.save()
	}

	h, ok := k.Ready.Remove(pid)
	if !ok {
		return
	}

	if k.Verbose {
		k.Logger.Debug("from ready", "pid", pid, "to", dest.Name)
	}

	dest.PushBack(h)

	if h == current {
		if k.Ready.Empty() {
			if k.Messages {
				k.Logger.Warn("blocked", "pid", pid, "error", ErrDeadlock)
			}
		} else {
			k.load()
		}
	}

	return
}

// Preempt moves the running process to the tail of the ready queue.
func (k *Kernel) Preempt() {
	if k.Ready.Len() < 2 {
		return
	}

	if k.Verbose {
		k.Logger.Debug("preempt", "pid", k.CurrentPid())
	}

	k.save()
	k.Ready.Rotate()
	k.load()
}

// release returns the memory and slot of a process that is in no queue.
func (k *Kernel) release(h Handle) {
	proc := k.Table.Get(h)
	if proc.Resident {
		k.FreeList.Coalesce(proc.Block)
	}
	k.Table.Destroy(h)
}

// Terminate ends the running process, admits what now fits in memory,
// and loads the next process.
func (k *Kernel) Terminate(status cpu.Status, fault error) {
	h, ok := k.Ready.Dequeue()
	if !ok {
		return
	}

	proc := k.Table.Get(h)
	k.finish(proc, status, fault)

	k.release(h)
	k.Admit()
	k.load()
}

// finish records the end of a process.
func (k *Kernel) finish(proc *Process, status cpu.Status, fault error) {
	stat := &k.stats[proc.Pid]
	stat.End = k.Ticks
	stat.Finished = true
	stat.Status = status
	if fault != nil && !errors.Is(fault, cpu.ErrHalt) {
		stat.Fault = fault.Error()
	}

	if k.Verbose {
		k.Logger.Debug("terminated", "pid", proc.Pid, "program", proc.Program, "status", status, "fault", stat.Fault)
	}
}

// Kill terminates a process in any queue.
func (k *Kernel) Kill(pid int) (err error) {
	if k.CurrentPid() == pid {
		k.Terminate(cpu.FAULT, ErrProcessKilled)
		return
	}

	for q := range k.Queues() {
		h, ok := q.Remove(pid)
		if !ok {
			continue
		}

		for sem := range k.Semaphores() {
			if sem.Blocked == q {
				sem.Count++
			}
		}

		proc := k.Table.Get(h)
		if proc.Resident {
			k.finish(proc, cpu.FAULT, ErrProcessKilled)
		}
		k.release(h)
		k.Admit()
		return
	}

	err = &ErrProcess{Pid: pid, Err: ErrProcessMissing}
	return
}

// Tick advances the operating system by one instruction. It returns true
// once no process is left to run.
func (k *Kernel) Tick(status cpu.Status, fault error) (done bool) {
	k.Ticks++

	preempt := false
	if k.Cpu.IC <= 0 {
		preempt = true
		k.Cpu.IC = k.slice()
	}

	k.ServiceTrap()

	if status != cpu.CONTINUE {
		k.Terminate(status, fault)
	}

	if k.Ready.Empty() {
		done = true
		return
	}

	if preempt {
		k.Preempt()
	}

	return
}

// Stats returns the run records, indexed by pid.
func (k *Kernel) Stats() []Stat {
	return slices.Clone(k.stats)
}
