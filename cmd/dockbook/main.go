package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/dockbook/cmd/dockbook/commands"
	cerrors "git.home.luguber.info/inful/dockbook/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	g := commands.NewGlobal(ctx)
	cli := &commands.CLI{}
	err := commands.Execute(g, cli, os.Args[1:], os.Exit)
	stop()

	cerrors.NewCLIErrorAdapter(cli.Verbose, g.Logger).HandleError(err)
}
