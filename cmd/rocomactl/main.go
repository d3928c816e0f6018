package main

import (
	"fmt"
	"os"

	"github.com/matthewgan/rocoma/internal/rocomactl"
)

func main() {
	if err := rocomactl.RootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
