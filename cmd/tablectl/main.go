// Command tablectl administers table and meetup records.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Shivanand-hulikatti/sola-table/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	opts := &cli.RootOptions{}
	err := cli.NewRootCommand(opts).ExecuteContext(ctx)
	_ = opts.Close()
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
