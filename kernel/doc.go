// Package kernel implements the PBrain12 operating system.
//
// Programs are queued as processes on the new queue and admitted to the
// ready queue once the free list can allocate their memory window. The
// head of the ready queue runs on the CPU. Each tick the kernel charges
// the time slice, services the pending trap, retires a halted or faulted
// process, and rotates the ready queue when the slice has run out.
//
// Processes synchronize through counting semaphores, reached by the wait
// and signal traps. Resource semaphores are indexed by the accumulator;
// gate semaphores by a non-zero register value.
package kernel
