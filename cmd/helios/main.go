package main

import (
	"os"

	"github.com/helioquant/helios/cmd/helios/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
