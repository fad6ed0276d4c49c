// The main package for the rankcrawl executable.
package main

import (
	"fmt"
	"os"

	"rankcrawl/cmd"
)

// main defers all execution to the Cobra CLI. Setup failures are the only
// path to a non-zero exit; a pass with per-listing failures still exits 0.
func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rankcrawl:", err)
		os.Exit(1)
	}
}
