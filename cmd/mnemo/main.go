package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	rootcmd "github.com/five82/mnemo/cmd/mnemo/root"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootcmd.New().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mnemo: %v\n", err)
		return 1
	}
	return 0
}
