package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/spf13/cobra"
)

var dumpTree bool

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Parse a description file and display its tree",
	Long: `Parse an input method description file and display the parsed
description tree.

If no file is provided, reads from stdin.
Use --tree to show the full indented node structure instead of the
re-serialized form.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)

	dumpCmd.Flags().BoolVar(&dumpTree, "tree", false, "dump the full indented node structure")
}

func runDump(cmd *cobra.Command, args []string) error {
	source, file, err := readInput(args)
	if err != nil {
		return err
	}

	tree, err := desctree.Parse(source, file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("parsing failed")
	}

	if dumpTree {
		dumpValue(tree, 0)
	} else {
		fmt.Println(tree.String())
	}
	return nil
}

func dumpValue(v desctree.Value, indent int) {
	pad := strings.Repeat("  ", indent)
	switch v.Kind {
	case desctree.List:
		fmt.Printf("%sList (%d items)\n", pad, len(v.Items))
		for _, it := range v.Items {
			dumpValue(it, indent+1)
		}
	case desctree.Int:
		fmt.Printf("%sInteger: %d\n", pad, v.IntVal)
	case desctree.Symbol:
		fmt.Printf("%sSymbol: %s\n", pad, v.SymVal)
	case desctree.Text:
		fmt.Printf("%sText: %q\n", pad, v.TextVal)
	}
}

func readInput(args []string) (source, file string, err error) {
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", "", fmt.Errorf("error reading file: %w", err)
		}
		return string(data), args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", "", fmt.Errorf("error reading stdin: %w", err)
	}
	return string(data), "<stdin>", nil
}
