// Command apicall sends requests to an HTTP API from the command line.
//
// Settings come from an optional YAML file (--config), APICLIENT_*
// environment variables (also read from --env-file) and flags, in
// increasing order of precedence.
//
//	apicall --base-url https://api.example.com --token "Bearer abc" get users/5 --json
//	apicall post events --json --data '{"kind":"ping"}' --discard
//	apicall upload reports ./q3.pdf
//	apicall download --concurrency 4 exports/a.csv=./a.csv exports/b.csv=./b.csv
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// Exit codes.
const (
	ExitOK        = 0
	ExitGeneral   = 1
	ExitResponse  = 2
	ExitInterrupt = 130
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupt
	}

	var respErr *responseError
	if errors.As(err, &respErr) {
		return ExitResponse
	}

	return ExitGeneral
}
