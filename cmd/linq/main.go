package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit status. Once
// SIGINT or SIGTERM arrives the status is exitINT whatever the command
// returned.
func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)

	switch {
	case ctx.Err() != nil:
		return exitINT
	case err != nil:
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}
