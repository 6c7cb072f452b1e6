package main

import (
	"os"

	"github.com/nodewatch-systems/nodewatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
