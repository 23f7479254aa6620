package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Run with `go run ./tools/ledger-cli`

func main() {
	app := &cli.App{
		Name:      "Ledger DB Toolbox",
		HelpName:  "ledger",
		Usage:     "A set of utilities to inspect ledger DB backup directories",
		Copyright: "(c) 2024 Fantom Foundation",
		Flags:     []cli.Flag{},
		Commands: []*cli.Command{
			&getInfoCommand,
			&getAccountCommand,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
