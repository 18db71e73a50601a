// Command aicii is the entry point for the restaurant recommendation service.
// It provides a CLI interface (via Cobra) and an HTTP server exposing the
// chat and search API.
package main

import (
	"fmt"
	"os"

	"github.com/alswn8268/ai-cii/cmd/aicii/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
