package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mike-fabian/m17n-lib-sub004/internal/desctree"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imloader"
	"github.com/mike-fabian/m17n-lib-sub004/internal/imtrie"
	"github.com/mike-fabian/m17n-lib-sub004/internal/keysym"
	"github.com/spf13/cobra"
)

var loadShowMaps bool

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Compile and validate a description file",
	Long: `Compile an input method description into its validated in-memory
form, reporting load errors with source positions.

On success, prints a summary of the compiled definition: title, states,
macros, variables, and commands.
Use --maps to also print every key sequence reachable from each state's
root map.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)

	loadCmd.Flags().BoolVar(&loadShowMaps, "maps", false, "print each state's compiled key sequences")
}

func runLoad(cmd *cobra.Command, args []string) error {
	source, file, err := readInput(args)
	if err != nil {
		return err
	}

	tree, err := desctree.Parse(source, file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("parsing failed")
	}

	reg := keysym.NewRegistry()
	loader := imloader.NewLoader(reg, nil)
	def, err := loader.Load(tree, source, file)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return fmt.Errorf("load failed")
	}

	fmt.Printf("title:     %q\n", def.Title)
	if def.Version != "" {
		fmt.Printf("version:   %s\n", def.Version)
	}
	fmt.Printf("states:    %d\n", len(def.States))
	fmt.Printf("macros:    %d\n", len(def.Macros))
	fmt.Printf("variables: %d\n", len(def.Variables))
	fmt.Printf("commands:  %d\n", len(def.Commands))
	fmt.Printf("modules:   %d\n", len(def.Modules))

	for _, st := range def.States {
		terminals, nodes := countNodes(st.Root)
		fmt.Printf("state %s: %d nodes, %d terminal\n", reg.NameOf(st.Name), nodes, terminals)
		if loadShowMaps {
			for _, line := range keyseqLines(st.Root, reg) {
				fmt.Printf("  %s\n", line)
			}
		}
	}
	return nil
}

func countNodes(root *imtrie.Node) (terminals, nodes int) {
	root.Walk(func(path []keysym.Symbol, n *imtrie.Node) {
		nodes++
		if n.IsTerminal() {
			terminals++
		}
	})
	return
}

func keyseqLines(root *imtrie.Node, reg *keysym.Registry) []string {
	var lines []string
	root.Walk(func(path []keysym.Symbol, n *imtrie.Node) {
		if len(path) == 0 {
			return
		}
		names := make([]string, len(path))
		for i, s := range path {
			names[i] = reg.NameOf(s)
		}
		var marks []string
		if len(n.MapActions) > 0 {
			marks = append(marks, fmt.Sprintf("map:%d", len(n.MapActions)))
		}
		if len(n.BranchActions) > 0 {
			marks = append(marks, fmt.Sprintf("branch:%d", len(n.BranchActions)))
		}
		if n.IsTerminal() {
			marks = append(marks, "terminal")
		}
		lines = append(lines, strings.Join(names, " ")+"  ["+strings.Join(marks, " ")+"]")
	})
	sort.Strings(lines)
	return lines
}
