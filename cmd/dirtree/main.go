package main

import (
	"os"

	"github.com/mkovalev/dirtree/internal/cli"
)

// main runs the dirtree command, reporting failure through the exit code.
// Cobra has already printed the error by the time Execute returns.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		os.Exit(1)
	}
}
