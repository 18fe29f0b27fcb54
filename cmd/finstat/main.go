package main

import (
	"os"

	"github.com/finstat-dev/finstat/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
