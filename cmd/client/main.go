package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/offsync/internal/buildinfo"
	"github.com/dmitrijs2005/offsync/internal/client/cli"
	"github.com/dmitrijs2005/offsync/internal/client/config"
	"github.com/dmitrijs2005/offsync/internal/logging"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.New(os.Stderr, "text", cfg.LogLevel)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
