package main

import (
	"os"

	"github.com/mike-fabian/m17n-lib-sub004/cmd/imrun/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
