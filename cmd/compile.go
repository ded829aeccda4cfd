package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/isleforge/isleforge/internal/compiler"
	"github.com/isleforge/isleforge/internal/types"
)

var (
	compileMode     string
	compileCSS      string
	compileTitle    string
	compileOptimize bool
	compileSEO      bool
	compileJSON     bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [template file]",
	Short: "Compile a template file into static HTML and islands",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompile,
}

func init() {
	compileCmd.Flags().StringVar(&compileMode, "mode", "advanced",
		"compile mode (default, enhanced, advanced)")
	compileCmd.Flags().StringVar(&compileCSS, "css", "", "custom CSS file to inject")
	compileCmd.Flags().StringVar(&compileTitle, "title", "", "page title")
	compileCmd.Flags().BoolVar(&compileOptimize, "optimize", false, "minify the output HTML")
	compileCmd.Flags().BoolVar(&compileSEO, "seo", false, "inject SEO metadata")
	compileCmd.Flags().BoolVar(&compileJSON, "json", false, "emit the full result as JSON")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	comp, _, _, err := buildCompiler()
	if err != nil {
		return err
	}

	template, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading template: %w", err)
	}

	var customCSS string
	if compileCSS != "" {
		css, err := os.ReadFile(compileCSS)
		if err != nil {
			return fmt.Errorf("reading css: %w", err)
		}
		customCSS = string(css)
	}

	req := compiler.CompileRequest{
		Template:  string(template),
		CustomCSS: customCSS,
		Title:     compileTitle,
		Options: types.CompilationOptions{
			Mode:               types.CompileMode(compileMode),
			EnableOptimization: compileOptimize,
			EnableSEOMetadata:  compileSEO,
		},
	}

	result := comp.Compile(cmd.Context(), req)

	if compileJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "error: %s\n", e)
	}

	if result.Compiled != nil {
		html := result.Compiled.StaticHTML
		if !result.Success && result.Compiled.Fallback != nil {
			html = result.Compiled.Fallback.StaticHTML
			fmt.Fprintln(os.Stderr, "using fallback output")
		}
		fmt.Println(html)
	}

	if !result.Success {
		return fmt.Errorf("compilation failed with %d error(s)", len(result.Errors))
	}
	return nil
}
