package main

import (
	"os"

	"github.com/ayzanadeem/Budgey/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
