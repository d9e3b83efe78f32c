package main

import (
	"os"

	"github.com/spigell/loan-eligibility/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
