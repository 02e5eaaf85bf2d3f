package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"carlist-scraper/commands"
	"carlist-scraper/config"
	"carlist-scraper/utils"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLoggerTo(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := commands.ExecuteContext(ctx, cfg, logger)
	stop()

	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
