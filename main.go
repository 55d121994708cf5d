package main

import (
	"os"

	"github.com/Makepad-fr/verbalist/internal/cli"
)

// Same entry point as cmd/verbalist, so `go run .` works from the repo root.
func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
