// Package main is the entry point for the clipforge CLI.
// The CLI is the developer terminal tool for interacting with the clipforge API.
package main

import (
	"os"

	"clipforge/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
