package main

import (
	"os"

	"github.com/leshachaplin/tracklog/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
