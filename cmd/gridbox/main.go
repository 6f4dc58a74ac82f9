package main

import (
	"os"

	"github.com/gridbox/gridbox/cmd/gridbox/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
