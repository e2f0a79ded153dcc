package main

import (
	"fmt"
	"os"

	"github.com/gllesch/plsync/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "plsync:", err)
		os.Exit(1)
	}
}
