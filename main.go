package main

import (
	"os"

	"github.com/facilidrive/facilidrive/cmd"
)

func main() {
	if err := cmd.New().Execute(); err != nil {
		os.Exit(1)
	}
}
