// Package main provides the entry point for the chargesync CLI tool.
package main

import (
	"github.com/osmtools/chargesync/cmd/chargesync/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
