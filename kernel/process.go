package kernel

import (
	"iter"

	"github.com/ezrec/pbrain/alloc"
	"github.com/ezrec/pbrain/cpu"
	"github.com/ezrec/pbrain/internal"
	"github.com/ezrec/pbrain/memory"
)

// Handle is the index of a process slot in a Table.
type Handle int

const NO_HANDLE = Handle(-1)

// Process is a process control block.
type Process struct {
	Pid         int           // Process id, in queueing order from 0.
	Program     string        // Program name.
	MemRequired int           // Words of memory requested by the image.
	Block       alloc.Block   // Allocated memory window, if Resident.
	Resident    bool          // Set once memory has been allocated.
	Context     cpu.Context   // Saved registers.
	Image       *memory.Image // Program image loaded on admission.
	QueuedAt    int           // Tick the process was queued at.
	WaitTime    int           // Tick the process was admitted at.

	next  Handle
	queue *Queue
}

// Queue returns the queue the process is a member of, or nil.
func (proc *Process) Queue() *Queue {
	return proc.queue
}

// Table is the arena of process control blocks.
// Slots of destroyed processes are reused.
type Table struct {
	slots  []Process
	live   []bool
	unused internal.Stack[Handle]
	count  int
}

// Create stores a process, returning its handle.
func (tab *Table) Create(proc Process) (h Handle) {
	proc.next = NO_HANDLE
	proc.queue = nil

	h, ok := tab.unused.Pop()
	if ok {
		tab.slots[h] = proc
		tab.live[h] = true
	} else {
		h = Handle(len(tab.slots))
		tab.slots = append(tab.slots, proc)
		tab.live = append(tab.live, true)
	}
	tab.count++

	return
}

// Get returns the process at h, or nil if the slot is empty.
// The pointer is valid until the next call to Create.
func (tab *Table) Get(h Handle) (proc *Process) {
	if h < 0 || int(h) >= len(tab.slots) || !tab.live[h] {
		return
	}

	proc = &tab.slots[h]
	return
}

// Destroy releases the slot at h.
// A process must be removed from its queue before it is destroyed.
func (tab *Table) Destroy(h Handle) {
	proc := tab.Get(h)
	if proc == nil {
		return
	}
	if proc.queue != nil {
		panic(ErrQueueMember)
	}

	*proc = Process{}
	tab.live[h] = false
	tab.unused.Push(h)
	tab.count--
}

// Len returns the number of live processes.
func (tab *Table) Len() int {
	return tab.count
}

// All iterates over the live processes.
func (tab *Table) All() iter.Seq2[Handle, *Process] {
	return func(yield func(Handle, *Process) bool) {
		for n := range tab.slots {
			if !tab.live[n] {
				continue
			}
			if !yield(Handle(n), &tab.slots[n]) {
				return
			}
		}
	}
}

// Find returns the handle of the live process with the pid.
func (tab *Table) Find(pid int) (h Handle, ok bool) {
	for h, proc := range tab.All() {
		if proc.Pid == pid {
			return h, true
		}
	}

	return NO_HANDLE, false
}

// Queue is a FIFO of processes linked through their control blocks.
type Queue struct {
	Name string

	table *Table
	head  Handle
	tail  Handle
	count int
}

// NewQueue creates an empty queue of processes from the table.
func (tab *Table) NewQueue(name string) (q *Queue) {
	q = &Queue{
		Name:  name,
		table: tab,
		head:  NO_HANDLE,
		tail:  NO_HANDLE,
	}

	return
}

func (q *Queue) claim(h Handle) (proc *Process) {
	proc = q.table.Get(h)
	if proc == nil {
		panic(ErrProcessMissing)
	}
	if proc.queue != nil {
		panic(ErrQueueMember)
	}

	proc.queue = q
	q.count++
	return
}

// PushBack appends a process to the tail of the queue.
// Pushing a process that is already queued panics.
func (q *Queue) PushBack(h Handle) {
	proc := q.claim(h)
	proc.next = NO_HANDLE

	if q.tail == NO_HANDLE {
		q.head = h
	} else {
		q.table.Get(q.tail).next = h
	}
	q.tail = h
}

// PushFront inserts a process at the head of the queue.
// Pushing a process that is already queued panics.
func (q *Queue) PushFront(h Handle) {
	proc := q.claim(h)
	proc.next = q.head

	q.head = h
	if q.tail == NO_HANDLE {
		q.tail = h
	}
}

// unlink removes h, which follows prev, from the queue.
func (q *Queue) unlink(prev Handle, h Handle) {
	proc := q.table.Get(h)

	if prev == NO_HANDLE {
		q.head = proc.next
	} else {
		q.table.Get(prev).next = proc.next
	}
	if q.tail == h {
		q.tail = prev
	}

	proc.next = NO_HANDLE
	proc.queue = nil
	q.count--
}

// Dequeue removes the head of the queue.
func (q *Queue) Dequeue() (h Handle, ok bool) {
	h, ok = q.Head()
	if ok {
		q.unlink(NO_HANDLE, h)
	}

	return
}

// Remove unlinks the process with the pid from anywhere in the queue.
func (q *Queue) Remove(pid int) (h Handle, ok bool) {
	prev := NO_HANDLE
	for h = q.head; h != NO_HANDLE; h = q.table.Get(h).next {
		if q.table.Get(h).Pid == pid {
			q.unlink(prev, h)
			ok = true
			return
		}
		prev = h
	}

	h = NO_HANDLE
	return
}

// Rotate moves the head of the queue to its tail.
func (q *Queue) Rotate() {
	if q.count < 2 {
		return
	}

	h, _ := q.Dequeue()
	q.PushBack(h)
}

// Head returns the first process of the queue.
func (q *Queue) Head() (h Handle, ok bool) {
	h = q.head
	ok = h != NO_HANDLE
	return
}

// Find returns the handle of the queued process with the pid.
func (q *Queue) Find(pid int) (h Handle, ok bool) {
	for h, proc := range q.All() {
		if proc.Pid == pid {
			return h, true
		}
	}

	return NO_HANDLE, false
}

// Len returns the number of queued processes.
func (q *Queue) Len() int {
	return q.count
}

// Empty returns true if the queue has no processes.
func (q *Queue) Empty() bool {
	return q.count == 0
}

// All iterates over the queue from head to tail.
func (q *Queue) All() iter.Seq2[Handle, *Process] {
	return func(yield func(Handle, *Process) bool) {
		for h := q.head; h != NO_HANDLE; {
			proc := q.table.Get(h)
			next := proc.next
			if !yield(h, proc) {
				return
			}
			h = next
		}
	}
}

// Pids returns the process ids in queue order.
func (q *Queue) Pids() (pids []int) {
	pids = []int{}
	for _, proc := range q.All() {
		pids = append(pids, proc.Pid)
	}

	return
}
