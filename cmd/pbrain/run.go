package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ezrec/pbrain/machine"
	"github.com/ezrec/pbrain/report"
)

const (
	REPORT_TEXT = "text"
	REPORT_YAML = "yaml"
	REPORT_NONE = "none"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [programs...]",
	Short: "Run programs to completion, then report their statistics",
	RunE:  runMain,
}

var (
	runDir    string
	runReport string
)

func init() {
	runCmd.Flags().StringVarP(&runDir, "dir", "d", "", "queue every program file of a directory")
	runCmd.Flags().StringVar(&runReport, "report", REPORT_TEXT, "statistics report: text, yaml or none")
}

// writeReport writes the run statistics in the requested format.
func writeReport(w io.Writer, m *machine.Machine, format string) (err error) {
	sum := report.Summarize(m.Kernel.Stats())

	switch format {
	case REPORT_TEXT:
		err = sum.WriteText(w)
	case REPORT_YAML:
		err = sum.WriteYAML(w)
	case REPORT_NONE:
	default:
		err = ErrReportFormat
	}

	return
}

func runMain(cmd *cobra.Command, args []string) (err error) {
	switch runReport {
	case REPORT_TEXT, REPORT_YAML, REPORT_NONE:
	default:
		return ErrReportFormat
	}

	m := machine.New(cfg, logger)
	m.Dumper = func(snap *machine.Snapshot) {
		snap.WriteTo(cmd.OutOrStdout())
	}

	_, err = queuePrograms(m, runDir, args)
	if err != nil {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m.Start()
	err = m.Run(ctx)
	if err != nil {
		logger.Error("run", "ticks", m.Kernel.Ticks, "error", err)
	}

	err = writeReport(cmd.OutOrStdout(), m, runReport)
	return
}
