package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "fuelmap",
		Usage: "Find nearby fuel stations, live prices and driving directions",
		Commands: []*cli.Command{
			fetchCommand(),
			nearbyCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
