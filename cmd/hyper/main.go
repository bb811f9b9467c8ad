// Command hyper is a command line client for the hyper services.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, newApp(os.Stdout, os.Stderr), os.Args[1:], os.Stdin)
	cancel()
	os.Exit(code)
}

// run executes the CLI and maps the outcome to an exit code: 0 on success,
// 2 when the backend answered not-ok, 1 on any other error.
func run(ctx context.Context, a *app, args []string, stdin io.Reader) int {
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	err := root.ExecuteContext(ctx)
	var notOK *notOKError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &notOK):
		return 2
	default:
		fmt.Fprintln(a.errOut, "Error:", err)
		return 1
	}
}
