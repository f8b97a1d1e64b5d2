// Package main is the entry point for the mcpm CLI.
package main

import (
	"os"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands"
)

func main() {
	os.Exit(commands.Execute())
}
