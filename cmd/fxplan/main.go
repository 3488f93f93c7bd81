package main

import (
	"os"

	"github.com/rustyeddy/fxplan/cmd/fxplan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
