package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/overflowhosting/lockscreen/internal/client/cli"
	"github.com/overflowhosting/lockscreen/internal/client/config"
	"github.com/overflowhosting/lockscreen/internal/logging"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}
}
