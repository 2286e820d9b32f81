// Package main is the entry point for the dev CLI.
//
// dev drives a docker compose development environment described by a
// devSpec document (dev.yml by default). All functionality lives in the
// internal/cli package.
//
// Build-time variables (version, commit, date) are injected via ldflags.
package main

import (
	"github.com/shinji-kodama/dev-compose/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
