package kernel

// Semaphore is a counting semaphore with a queue of blocked processes.
// A negative count is the number of blocked processes.
type Semaphore struct {
	Name    string
	Count   int
	Gate    bool
	Blocked *Queue
}

// Wait takes a unit of the semaphore, blocking the running process if
// none are left.
func (k *Kernel) Wait(sem *Semaphore) {
	sem.Count--

	if k.Verbose {
		k.Logger.Debug("wait", "semaphore", sem.Name, "count", sem.Count)
	}

	if sem.Count < 0 {
		pid := k.CurrentPid()
		if k.Verbose {
			k.Logger.Debug("blocking", "pid", pid, "semaphore", sem.Name)
		}
		k.MoveFromReady(sem.Blocked, pid)
	}
}

// Signal returns a unit to the semaphore, waking its first blocked
// process if there is one waiting.
func (k *Kernel) Signal(sem *Semaphore) (err error) {
	sem.Count++

	if k.Verbose {
		k.Logger.Debug("signal", "semaphore", sem.Name, "count", sem.Count)
	}

	if sem.Count <= 0 {
		h, ok := sem.Blocked.Head()
		if !ok {
			err = ErrSemaphoreEmpty
			return
		}
		pid := k.Table.Get(h).Pid
		if k.Verbose {
			k.Logger.Debug("unblocking", "pid", pid, "semaphore", sem.Name)
		}
		k.MoveToReady(sem.Blocked, pid)
	}

	return
}
