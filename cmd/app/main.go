package main

import (
	"os"

	"github.com/ginona/tucalerta/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		os.Exit(1)
	}
}
