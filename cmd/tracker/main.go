// Package main provides the tracker CLI.
package main

import (
	"os"

	"github.com/mesh-intelligence/tracker/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
