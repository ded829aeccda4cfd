package main

import (
	"os"

	"github.com/isleforge/isleforge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
