// Command wasmi is the thin CLI wrapper around the wasmi engine: run a
// module directly, or replay a wast2json-exported spec-test script (spec.md
// §8 "run [--fuel N] [--invoke NAME] MODULE [ARGS…]" and "wast FILE").
// Grounded on grafana-k6's cobra command-tree shape (one *cobra.Command per
// subcommand, flags built with pflag.FlagSet) and its fatih/color use for
// terminal-only diagnostics; the engine itself never imports either (spec.md
// §1's CLI non-goal: this binary is peripheral, not part of the core).
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wasmi",
		Short:         "A register-machine WebAssembly interpreter",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())
	root.AddCommand(newWastCmd())
	return root
}
