package main

import (
	"os"

	"github.com/lakshaymaurya-felt/diskord/cmd"
)

// Set by the linker: -ldflags "-X main.version=..."
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
