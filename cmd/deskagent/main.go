package main

import (
	"fmt"
	"os"

	"github.com/tailored-agentic-units/deskagent/desktop"
)

func main() {
	if err := newRootCmd(desktop.NewRobot()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
