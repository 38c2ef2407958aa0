package main

import (
	"os"

	"github.com/hirepal/hirepal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
