package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Use plain stderr since the logger may not be initialized yet
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
