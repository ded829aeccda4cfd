package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate [template file]",
	Short: "Validate a template's structure without compiling it",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "emit the result as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	comp, _, _, err := buildCompiler()
	if err != nil {
		return err
	}

	template, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}

	result := comp.ValidateTemplate(cmd.Context(), string(template))

	if validateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("nodes: %d, max depth: %d\n", result.Stats.NodeCount, result.Stats.MaxDepth)
	for name, count := range result.Stats.ComponentCounts {
		fmt.Printf("  %s: %d\n", name, count)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}

	if !result.IsValid {
		return fmt.Errorf("template is invalid")
	}
	fmt.Println("template is valid")
	return nil
}
