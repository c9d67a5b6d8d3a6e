package main

import (
	"os"

	"github.com/mkeller/ablate/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
