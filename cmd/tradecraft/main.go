package main

import (
	"os"

	"tradecraft/cmd/tradecraft/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
