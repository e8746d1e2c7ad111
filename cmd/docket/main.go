package main

import (
	"os"

	"github.com/brdocs/docket/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
