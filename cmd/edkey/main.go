package main

import (
	"os"

	"edkey/cmd/edkey/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
