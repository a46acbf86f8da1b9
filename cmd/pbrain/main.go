// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Command pbrain assembles and runs programs on the PBrain12 machine.
package main

import (
	"fmt"
	"os"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v: %v\n", rootCmd.Name(), err)
		os.Exit(1)
	}
}
