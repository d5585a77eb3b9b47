// ABOUTME: Entry point for the coach CLI.
// ABOUTME: Invokes the root Cobra command.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		_ = closeResources()
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
