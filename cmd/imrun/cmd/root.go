package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "imrun",
	Short: "Data-driven input method engine",
	Long: `imrun loads declarative input method descriptions and drives them
from the command line.

An input method description defines states, key maps, macros, and
variables; the engine walks a trie of key maps per state, executes
action lists, and maintains preedit, committed text, candidate lists,
and status strings.

Use 'imrun dump' to inspect a parsed description tree, 'imrun load' to
validate a description, and 'imrun feed' to push keys through a live
input context and watch its observables.`,
	Version: Version,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	// Global flags
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+msg+"\n", args...)
	os.Exit(1)
}
