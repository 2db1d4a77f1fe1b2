package main

import (
	"os"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	setMaxProcs(os.Stderr, verboseRequested(os.Args[1:]))
	os.Exit(run(os.Args[1:], DefaultEnv()))
}
