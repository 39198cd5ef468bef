// Command tierview computes tiered conference layouts.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/tierview/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "tierview:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
