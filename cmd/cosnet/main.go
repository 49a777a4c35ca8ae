package main

import (
	"os"

	"github.com/cosnet-io/cosnet/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
