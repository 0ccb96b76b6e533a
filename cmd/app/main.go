package main

import (
	"os"

	"github.com/imhuimie/string-analyzer-go/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
