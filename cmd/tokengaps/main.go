// Package main provides the entry point for the tokengaps CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/tokengaps/cmd/tokengaps/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
