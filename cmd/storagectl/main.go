package main

import (
	"fmt"
	"os"

	"github.com/CloneWith/storageengine/cmd/storagectl/commands"

	// Import prometheus metrics to register its init() constructor.
	_ "github.com/CloneWith/storageengine/pkg/metrics/prometheus"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
