package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ezrec/pbrain/machine"
)

var asmCmd = &cobra.Command{
	Use:   "asm [flags] source",
	Short: "Assemble a source program into a program image",
	Args:  cobra.ExactArgs(1),
	RunE:  asmMain,
}

var (
	asmOutput  string
	asmListing bool
)

func init() {
	asmCmd.Flags().StringVarP(&asmOutput, "output", "o", "-", "program image output")
	asmCmd.Flags().BoolVarP(&asmListing, "listing", "l", false, "write a listing instead of the image")
}

func asmMain(cmd *cobra.Command, args []string) (err error) {
	source := args[0]

	inf, err := os.Open(source)
	if err != nil {
		return
	}
	defer inf.Close()

	// The machine supplies the trap and semaphore predefines.
	m := machine.New(cfg, logger)
	prog, err := m.Assemble(inf)
	if err != nil {
		return
	}

	out := cmd.OutOrStdout()
	if asmOutput != "-" {
		var ouf *os.File
		ouf, err = os.Create(asmOutput)
		if err != nil {
			return
		}
		defer func() {
			cerr := ouf.Close()
			if err == nil {
				err = cerr
			}
		}()
		out = ouf
	}

	if asmListing {
		err = prog.Listing(out)
		return
	}

	_, err = prog.WriteTo(out)
	return
}
