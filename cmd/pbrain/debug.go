package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/c-bata/go-prompt"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/ezrec/pbrain/machine"
	"github.com/ezrec/pbrain/report"
)

// DEBUG_RUN_LIMIT bounds the ticks of a debugger 'run' without a count.
const DEBUG_RUN_LIMIT = 100000

var debugCmd = &cobra.Command{
	Use:   "debug [flags] [programs...]",
	Short: "Step through programs interactively",
	RunE:  debugMain,
}

var debugDir string

func init() {
	debugCmd.Flags().StringVarP(&debugDir, "dir", "d", "", "queue every program file of a directory")
}

type debugCommand struct {
	name  string
	usage string
	fn    func(d *debugger, args []string) error
}

var debugCommands []debugCommand

func init() {
	debugCommands = []debugCommand{
		{"step", "step [n]: execute n instructions", (*debugger).step},
		{"run", "run [n]: execute until done, or n instructions", (*debugger).run},
		{"regs", "regs: show the cpu registers", (*debugger).regs},
		{"mem", "mem addr [n]: show n words of memory", (*debugger).mem},
		{"queues", "queues: show the process queues", (*debugger).queues},
		{"free", "free: show the free list", (*debugger).free},
		{"proc", "proc pid: show a process control block", (*debugger).proc},
		{"kill", "kill pid: terminate a process", (*debugger).kill},
		{"dump", "dump: show the machine state", (*debugger).dump},
		{"stats", "stats: show the process statistics", (*debugger).stats},
		{"help", "help: show the commands", (*debugger).help},
		{"quit", "quit: leave the debugger", (*debugger).quit},
	}
}

// debugger is the state of an interactive session.
type debugger struct {
	m       *machine.Machine
	out     io.Writer
	printer *pp.PrettyPrinter
	done    bool // No process is left to run.
	exit    bool // Quit was requested.
}

func newDebugger(m *machine.Machine, out io.Writer, color bool) (d *debugger) {
	d = &debugger{
		m:       m,
		out:     out,
		printer: pp.New(),
	}
	d.printer.SetColoringEnabled(color)
	d.printer.SetOutput(out)

	return
}

// count parses an optional count argument.
func count(args []string, def int) (n int, err error) {
	if len(args) == 0 {
		n = def
		return
	}

	n, err = strconv.Atoi(args[0])
	if err != nil || n < 0 {
		err = fmt.Errorf("%w: %v", ErrArgument, args[0])
	}
	return
}

// execute runs one command line.
func (d *debugger) execute(line string) (err error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}

	for _, cmd := range debugCommands {
		if cmd.name == args[0] {
			err = cmd.fn(d, args[1:])
			return
		}
	}

	err = fmt.Errorf("%w: %v", ErrCommand, args[0])
	return
}

func (d *debugger) tick() (err error) {
	if d.done {
		return
	}

	pid, lineno := d.m.Kernel.CurrentPid(), d.m.LineNo()
	d.done, err = d.m.Tick()
	if err != nil {
		fmt.Fprintf(d.out, "%v\n", err)
		err = nil
	}

	if d.m.Verbose {
		fmt.Fprintf(d.out, "tick %d pid %d line %d\n", d.m.Kernel.Ticks, pid, lineno)
	}

	return
}

func (d *debugger) step(args []string) (err error) {
	n, err := count(args, 1)
	if err != nil {
		return
	}

	for range n {
		err = d.tick()
		if err != nil || d.done {
			break
		}
	}

	if d.done {
		fmt.Fprintln(d.out, "done")
	}
	return
}

func (d *debugger) run(args []string) (err error) {
	n, err := count(args, DEBUG_RUN_LIMIT)
	if err != nil {
		return
	}

	return d.step([]string{strconv.Itoa(n)})
}

func (d *debugger) regs(args []string) (err error) {
	fmt.Fprintf(d.out, "PID %d\n%v", d.m.Kernel.CurrentPid(), d.m.Cpu.Context.String())
	return
}

func (d *debugger) mem(args []string) (err error) {
	if len(args) == 0 {
		err = fmt.Errorf("%w: address missing", ErrArgument)
		return
	}

	addr, err := strconv.Atoi(args[0])
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrArgument, args[0])
		return
	}

	n, err := count(args[1:], machine.DUMP_WORDS_PER_LINE)
	if err != nil {
		return
	}

	for i := range n {
		w, err := d.m.Memory.Word(addr + i)
		if err != nil {
			return err
		}
		fmt.Fprintf(d.out, "%03d: %v  %v\n", addr+i, w.String(), w.Disassemble())
	}

	return
}

func (d *debugger) queues(args []string) (err error) {
	for q := range d.m.Kernel.Queues() {
		fmt.Fprintf(d.out, "%v: %v\n", q.Name, q.Pids())
	}
	return
}

func (d *debugger) free(args []string) (err error) {
	for block := range d.m.Kernel.FreeList.Blocks() {
		fmt.Fprintf(d.out, "%v\n", block)
	}
	return
}

func (d *debugger) pid(args []string) (pid int, err error) {
	if len(args) != 1 {
		err = fmt.Errorf("%w: pid missing", ErrArgument)
		return
	}

	pid, err = strconv.Atoi(args[0])
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrArgument, args[0])
	}
	return
}

func (d *debugger) proc(args []string) (err error) {
	pid, err := d.pid(args)
	if err != nil {
		return
	}

	h, ok := d.m.Kernel.Table.Find(pid)
	if !ok {
		fmt.Fprintf(d.out, "pid %d: not found\n", pid)
		return
	}

	proc := d.m.Kernel.Table.Get(h)
	q := "none"
	if proc.Queue() != nil {
		q = proc.Queue().Name
	}
	fmt.Fprintf(d.out, "pid %d '%v' queue %v block %v\n", proc.Pid, proc.Program, q, proc.Block)
	d.printer.Println(proc.Context)

	return
}

func (d *debugger) kill(args []string) (err error) {
	pid, err := d.pid(args)
	if err != nil {
		return
	}

	err = d.m.Kernel.Kill(pid)
	if err == nil && d.m.Kernel.Ready.Empty() && d.m.Kernel.New.Empty() {
		d.done = true
	}
	return
}

func (d *debugger) dump(args []string) (err error) {
	_, err = d.m.Snapshot().WriteTo(d.out)
	return
}

func (d *debugger) stats(args []string) (err error) {
	return report.Summarize(d.m.Kernel.Stats()).WriteText(d.out)
}

func (d *debugger) help(args []string) (err error) {
	for _, cmd := range debugCommands {
		fmt.Fprintf(d.out, "  %v\n", cmd.usage)
	}
	return
}

func (d *debugger) quit(args []string) (err error) {
	d.exit = true
	return
}

// complete suggests debugger commands for the word before the cursor.
func (d *debugger) complete(doc prompt.Document) []prompt.Suggest {
	if strings.Contains(doc.TextBeforeCursor(), " ") {
		return []prompt.Suggest{}
	}

	var suggest []prompt.Suggest
	for _, cmd := range debugCommands {
		suggest = append(suggest, prompt.Suggest{Text: cmd.name, Description: cmd.usage})
	}

	return prompt.FilterHasPrefix(suggest, doc.GetWordBeforeCursor(), false)
}

func debugMain(cmd *cobra.Command, args []string) (err error) {
	m := machine.New(cfg, logger)

	_, err = queuePrograms(m, debugDir, args)
	if err != nil {
		return
	}

	out := cmd.OutOrStdout()
	d := newDebugger(m, out, true)
	m.Dumper = func(snap *machine.Snapshot) {
		snap.WriteTo(out)
	}

	readied := m.Start()
	fmt.Fprintf(out, "%d processes ready, %d waiting. Type 'help' for commands.\n", readied, m.Kernel.New.Len())

	p := prompt.New(
		func(line string) {
			err := d.execute(line)
			if err != nil {
				fmt.Fprintf(out, "%v\n", err)
			}
		},
		d.complete,
		prompt.OptionPrefix("pbrain> "),
		prompt.OptionTitle("PBrain12 debugger"),
		prompt.OptionAddKeyBind(prompt.KeyBind{
			Key: prompt.ControlC,
			Fn: func(*prompt.Buffer) {
				d.exit = true
			},
		}),
		prompt.OptionSetExitCheckerOnInput(func(in string, breakline bool) bool {
			return d.exit && breakline
		}),
	)
	p.Run()

	return
}
