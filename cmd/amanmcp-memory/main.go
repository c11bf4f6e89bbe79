// Package main provides the entry point for the amanmcp-memory CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/amanmcp-memory/cmd/amanmcp-memory/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
