// Command devpolicy runs and inspects the device policy state registry.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/devpolicy/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
