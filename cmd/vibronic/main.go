// Package main is the entry point of vibronic, a resource estimator for
// Trotterized simulation of vibronic molecular dynamics.
//
// Every command is one-shot: it loads configuration from the environment (and an
// optional .env file), reads the molecule's parameter file from the data
// directory or S3, prints tables on stdout and logs to stderr.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := execute(ctx, &rootOptions{}, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
