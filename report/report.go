// Package report summarizes the process statistics of a run.
package report

import (
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/ezrec/pbrain/internal"
	"github.com/ezrec/pbrain/kernel"
)

// Entry is the report line of a process.
type Entry struct {
	Pid      int    `yaml:"pid"`
	Program  string `yaml:"program"`
	Memory   int    `yaml:"memory"`
	Start    int    `yaml:"start"`
	End      int    `yaml:"end"`
	Duration int    `yaml:"duration"`
	Status   string `yaml:"status"`
	Fault    string `yaml:"fault,omitempty"`
}

// Summary is the report of a run.
//
// Averages are taken over the processes that were admitted; a process
// that never got memory has no wait or duration.
type Summary struct {
	Processes          int     `yaml:"processes"`
	Admitted           int     `yaml:"admitted"`
	Finished           int     `yaml:"finished"`
	Faulted            int     `yaml:"faulted"`
	AverageWait        float64 `yaml:"average_wait"`
	AverageNonZeroWait float64 `yaml:"average_non_zero_wait"`
	AverageDuration    float64 `yaml:"average_duration"`
	Entries            []Entry `yaml:"entries"`
}

func average(total int, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(total) / float64(count)
}

// Summarize the statistics of a run.
func Summarize(stats []kernel.Stat) (sum *Summary) {
	sum = &Summary{
		Processes: len(stats),
		Entries:   []Entry{},
	}

	for _, st := range stats {
		entry := Entry{
			Pid:     st.Pid,
			Program: st.Program,
			Memory:  st.Memory,
			Fault:   st.Fault,
		}

		switch {
		case st.Finished:
			entry.Start = st.Start
			entry.End = st.End
			entry.Duration = st.Duration()
			entry.Status = st.Status.String()
		case st.Admitted:
			entry.Start = st.Start
			entry.Status = "running"
		default:
			entry.Status = "waiting"
		}

		sum.Entries = append(sum.Entries, entry)
	}

	admitted := slices.DeleteFunc(slices.Clone(stats), func(st kernel.Stat) bool {
		return !st.Admitted
	})
	finished := slices.DeleteFunc(slices.Clone(admitted), func(st kernel.Stat) bool {
		return !st.Finished
	})

	sum.Admitted = len(admitted)
	sum.Finished = len(finished)
	sum.Faulted = internal.IterSeqCount(func(yield func(kernel.Stat) bool) {
		for _, st := range finished {
			if len(st.Fault) != 0 && !yield(st) {
				return
			}
		}
	})

	waits := internal.IterSeqSum(slices.Values(admitted), func(st kernel.Stat) int { return st.Start })
	durations := internal.IterSeqSum(slices.Values(finished), func(st kernel.Stat) int { return st.Duration() })
	nonZero := internal.IterSeqCount(func(yield func(kernel.Stat) bool) {
		for _, st := range admitted {
			if st.Start != 0 && !yield(st) {
				return
			}
		}
	})

	sum.AverageWait = average(waits, len(admitted))
	sum.AverageNonZeroWait = average(waits, nonZero)
	sum.AverageDuration = average(durations, len(finished))

	return
}

// WriteText writes the summary as a plain text report.
func (sum *Summary) WriteText(w io.Writer) (err error) {
	for _, entry := range sum.Entries {
		_, err = fmt.Fprintf(w, "Process %d: start = %d, end = %d, duration = %d",
			entry.Pid, entry.Start, entry.End, entry.Duration)
		if err != nil {
			return
		}

		switch {
		case len(entry.Fault) != 0:
			_, err = fmt.Fprintf(w, ", %v: %v\n", entry.Status, entry.Fault)
		case entry.Status != "halt":
			_, err = fmt.Fprintf(w, ", %v\n", entry.Status)
		default:
			_, err = fmt.Fprintln(w)
		}
		if err != nil {
			return
		}
	}

	_, err = fmt.Fprintf(w, "\nAverage wait time: %f\nAverage non-zero wait time: %f\nAverage duration: %f\n",
		sum.AverageWait, sum.AverageNonZeroWait, sum.AverageDuration)
	return
}

// WriteYAML writes the summary as a YAML document.
func (sum *Summary) WriteYAML(w io.Writer) (err error) {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err = enc.Encode(sum)
	if err != nil {
		return
	}

	err = enc.Close()
	return
}
