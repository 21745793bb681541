package main

import (
	"context"
	"fmt"
	"os"

	"github.com/andy/invoicedesk/internal/app"
	"github.com/andy/invoicedesk/internal/cli"
	"github.com/andy/invoicedesk/internal/config"
	"github.com/cockroachdb/errors"
)

func main() {
	// If the user asked for help, avoid initializing the full app (which may prompt)
	skipInit := false
	opts := app.Options{}
	for _, a := range os.Args[1:] {
		switch a {
		case "-h", "--help", "help":
			skipInit = true
		case "--ephemeral", "--ephemeral=true":
			opts.Driver = config.DriverMemory
		}
	}

	if err := run(skipInit, opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(skipInit bool, opts app.Options) error {
	if !skipInit {
		a, err := app.New(context.Background(), opts)
		if err != nil {
			return errors.Wrap(err, "failed to initialize app")
		}
		defer a.Close()
		cli.SetApp(a)
	}

	return cli.Execute()
}
