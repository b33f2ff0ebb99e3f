// Package main is the entry point for the favs CLI tool.
package main

import (
	"os"

	"github.com/aidanlsb/favs/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
