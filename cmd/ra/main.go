// Package main provides the entry point for the ra CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/ra/cmd/ra/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
