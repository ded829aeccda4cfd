// Package cmd provides the command-line interface for isleforge.
//
// Configuration is layered with clear precedence: command-line flags,
// ISLEFORGE_-prefixed environment variables, then an optional
// .isleforge.yml configuration file.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/isleforge/isleforge/internal/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "isleforge",
	Short: "Compile untrusted profile templates into static HTML and hydration islands",
	Long: `Isleforge compiles user-authored template markup into sanitized static
HTML plus a set of islands: validated descriptors of the interactive
components to hydrate at render time.

Quick Start:
  isleforge compile page.html       Compile a template file
  isleforge validate page.html      Structural validation without compiling
  isleforge serve page.html         Preview server with live reload
  isleforge components              List the registered component vocabulary`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default .isleforge.yml)")
	rootCmd.PersistentFlags().String("registry", "",
		"component registry YAML file extending the builtin vocabulary")
	rootCmd.PersistentFlags().String("log-level", "info",
		"log level (debug, info, warn, error)")

	must(viper.BindPFlag("registry.path", rootCmd.PersistentFlags().Lookup("registry")))
	must(viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level")))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".isleforge")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("ISLEFORGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	config.SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
		}
	}
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
