package main

import (
	"os"

	"github.com/matzehuels/gantry/internal/cli"
	"github.com/matzehuels/gantry/pkg/buildinfo"
)

func main() {
	cli.SetVersion(buildinfo.Version, buildinfo.Commit, buildinfo.Date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
