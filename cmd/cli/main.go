// Package main is the entry point for the tctl CLI.
// The CLI is the developer terminal tool for driving the transcodeplane API.
package main

import (
	"os"
	"transcodeplane/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
