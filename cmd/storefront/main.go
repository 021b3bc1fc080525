package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	logger := log.New(os.Stderr, "[storefront] ", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := newApp(os.Stdout, logger)
	if err := app.RunContext(ctx, os.Args); err != nil {
		logger.Printf("%v", err)
		stop()
		os.Exit(1)
	}
}
