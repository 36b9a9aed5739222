package main

import (
	"os"

	"github.com/pitops/minedispatch/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
