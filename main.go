package main

import (
	"os"

	"github.com/spigell/jobapply-dashboard/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
