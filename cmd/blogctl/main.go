package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/docblog/internal/client/cli"
	"github.com/dmitrijs2005/docblog/internal/client/config"
	"github.com/dmitrijs2005/docblog/internal/flagx"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(ctx, cfg)

	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	args := flagx.Positional(os.Args[1:], []string{"-a", "-d", "-t", "-c", "-config", "--config"})
	if err := app.Run(ctx, args); err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

}
