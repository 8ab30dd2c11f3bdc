// Command foodsheet runs the food-ordering API and its admin commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/foodsheet/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		if !cli.IsReported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
