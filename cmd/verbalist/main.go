package main

import (
	"os"

	"github.com/Makepad-fr/verbalist/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}
