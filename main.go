package main

import (
	"os"

	"github.com/voicetimeapp/voicetime/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
