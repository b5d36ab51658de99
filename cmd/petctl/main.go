package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/petfriends-verifier/internal/config"
	"github.com/samvad-hq/petfriends-verifier/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}

	sugar, err := logger.Init(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, cfg, logger.NewZapLogger(sugar), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	_ = logger.Close()
	os.Exit(code)
}
