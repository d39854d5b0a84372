package main

import (
	"os"

	"github.com/NeuralTrust/XSSGuard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
