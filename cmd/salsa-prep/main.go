package main

import (
	"os"

	"github.com/andrezz-b/salsa-prep/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
