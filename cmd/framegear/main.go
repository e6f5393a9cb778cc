// Package main is the entry point of the framegear host bridge.
//
// Usage:
//
//	framegear [flags] <command> [subcommand] [args]
//
// Commands:
//
//	run      - Connect to a Frame device and start the console
//	config   - Configuration management (contexts)
//	version  - Show version information
//
// Configuration:
//
//	The CLI stores configuration in ~/.giztoy/framegear/
//	Use 'framegear config context' commands to manage contexts.
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/framegear/cmd/framegear/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
