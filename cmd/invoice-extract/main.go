// Package main is the entry point for the invoice-extract CLI.
package main

import (
	"os"

	"github.com/jwozniak/invoice-extract/cmd/invoice-extract/commands"
)

func main() {
	os.Exit(commands.Execute())
}
