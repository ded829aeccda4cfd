package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/isleforge/isleforge/internal/types"
)

var componentsCmd = &cobra.Command{
	Use:   "components",
	Short: "List the registered component vocabulary",
	RunE:  runComponents,
}

func init() {
	rootCmd.AddCommand(componentsCmd)
}

func runComponents(cmd *cobra.Command, args []string) error {
	comp, _, _, err := buildCompiler()
	if err != nil {
		return err
	}

	all := comp.Registry().GetAll()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		reg := all[name]
		fmt.Printf("%s — %s\n", name, reg.Description)
		printProps(reg)
	}
	return nil
}

func printProps(reg *types.ComponentRegistration) {
	propNames := make([]string, 0, len(reg.Props))
	for prop := range reg.Props {
		propNames = append(propNames, prop)
	}
	sort.Strings(propNames)

	for _, prop := range propNames {
		schema := reg.Props[prop]
		line := fmt.Sprintf("  %s: %s", prop, schema.Kind)
		if schema.Required {
			line += " (required)"
		}
		if schema.Default != nil {
			line += fmt.Sprintf(" [default %v]", schema.Default)
		}
		if len(schema.Values) > 0 {
			line += fmt.Sprintf(" %v", schema.Values)
		}
		fmt.Println(line)
	}
}
