package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/stringptr/daa-sorting-benchmark/internal/cli"
)

// main resolves every flag and the config file into a CLIInvocation before
// any measurement starts, so usage errors never produce partial output.
func main() {
	inv, err := cli.ParseInvocation(os.Args[1:])
	if err != nil {
		var invErr *cli.InvocationError
		if errors.As(err, &invErr) {
			if invErr.ExitCode == cli.ExitSuccess {
				fmt.Fprintln(os.Stdout, invErr.Message)
			} else {
				fmt.Fprintln(os.Stderr, invErr.Message)
			}
			os.Exit(invErr.ExitCode)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitInternalError)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	result, execErr := cli.Execute(ctx, inv)
	stop()
	if execErr != nil {
		fmt.Fprintln(os.Stderr, execErr)
	}
	os.Exit(result.ExitCode)
}
