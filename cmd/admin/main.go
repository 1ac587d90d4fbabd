package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/datingapp/internal/admincli"
	"github.com/dmitrijs2005/datingapp/internal/flagx"
	"github.com/dmitrijs2005/datingapp/internal/logging"
	"github.com/dmitrijs2005/datingapp/internal/server"
	"github.com/dmitrijs2005/datingapp/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewJSONLogger(os.Stderr, cfg.LogLevel)

	core, err := server.OpenCore(ctx, cfg, logger, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer core.Close()

	app := admincli.NewApp(core.Admin, os.Stdin, os.Stdout)
	if err := app.Run(ctx, flagx.DropArgs(os.Args[1:], config.FlagNames)); err != nil {
		// bare usage errors already printed the help text
		if err != admincli.ErrUsage {
			fmt.Fprintln(os.Stderr, err)
		}
		core.Close()
		os.Exit(1)
	}

}
