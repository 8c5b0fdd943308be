package main

import (
	"fmt"
	"os"

	"github.com/michcald/klogger/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "uartlog:", err)
		os.Exit(1)
	}
}
