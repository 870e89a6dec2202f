// Command luatypes runs the static type-inference core over a directory of
// Lua modules and dumps the finalized, per-module analysis result.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

var rootCmd = &cobra.Command{
	Use:     "luatypes",
	Short:   "Static type inference for dynamically-typed Lua-like modules",
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
