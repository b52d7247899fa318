package main

import (
	"os"

	"github.com/zen-garden/zenop/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
