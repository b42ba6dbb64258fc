package main

import (
	"context"
	"fmt"
	"os"

	"github.com/qchem/gausscat/cmd"
	"github.com/qchem/gausscat/internal/buildinfo"
	"github.com/qchem/gausscat/internal/conf"
)

// Set by -ldflags at build time.
var (
	version   = "dev"
	buildDate = "unknown"
	commit    = ""
)

func main() {
	settings := &conf.Settings{}
	build := buildinfo.NewContext(version, buildDate, commit)

	rootCmd := cmd.RootCommand(settings, build)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
