package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gantry/pkg/assemble"
	"github.com/matzehuels/gantry/pkg/component"
	"github.com/matzehuels/gantry/pkg/graph"
)

// newInspectCmd creates the inspect command: summarize a persisted engine.
func newInspectCmd(cfgPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [snapshot]",
		Short: "Summarize a persisted engine snapshot",
		Long: `Loads an engine snapshot and prints its component graph: one line per
component with its rule, cache policy, and lifecycle. The snapshot argument
is a file path or a snapshot ID in the configured store; omit it to pick
interactively.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var ref string
			if len(args) > 0 {
				ref = args[0]
			}

			eng, err := loadEngine(cmd, cfgPath, ref)
			if err != nil {
				return err
			}

			root := eng.Graph()
			shareable := make(map[*graph.Node]bool)
			for _, n := range assemble.ShareableNodes(root, eng.Registry()) {
				shareable[n] = true
			}

			nodes := graph.Sorted(root)
			fmt.Println(StyleTitle.Render("Engine snapshot"))
			if eng.IsInstantiable() {
				printKeyValue("status", "instantiable")
			} else {
				printKeyValue("status", StyleWarning.Render("has unresolved placeholders"))
			}
			printStats(len(nodes)-1, graph.CountEdges(root), len(shareable))
			fmt.Println()

			for _, n := range nodes {
				c := n.Label()
				if component.IsRoot(c) {
					continue
				}
				name := shortName(component.TypeName(c.Rule.ProducedType()))
				life := stylePerUse.Render("per-use")
				if shareable[n] {
					life = styleShareable.Render("shared")
				}
				fmt.Printf("  %-28s %-32s %-12s %s\n",
					StyleValue.Render(name),
					StyleDim.Render(c.Rule.String()),
					c.Policy.String(),
					life,
				)
			}
			return nil
		},
	}
	return cmd
}

func shortName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
