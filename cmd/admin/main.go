// The admin command is the interactive administration tool for the
// NextGenFitness database.
package main

import (
	"os"

	"github.com/nextgenfitness/backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
