package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/petfriends-verifier/internal/app"
	"github.com/samvad-hq/petfriends-verifier/internal/config"
	"github.com/samvad-hq/petfriends-verifier/internal/logger"
	"github.com/samvad-hq/petfriends-verifier/internal/verifier"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var params commandParams
	if !params.Read(args, stderr) {
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 2
	}

	sugar, err := logger.Init(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "init logger: %v\n", err)
		return 2
	}
	defer logger.Close()
	log := logger.NewZapLogger(sugar)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checker, err := app.NewChecker(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize checker", "error", err)
		fmt.Fprintf(stderr, "petcheck start failed: %v\n", err)
		return 2
	}
	defer checker.Close()

	fmt.Fprintf(stdout, "Verifying %s\n", cfg.BaseURL)
	fmt.Fprintf(stdout, "Reproduce with: %s\n\n", params.command(args[0]))
	params.filters.Describe(stdout)

	testLogger := &verifier.ConsoleTestLogger{
		Out:                  stdout,
		NoColor:              params.noColor,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}
	strict := params.strict || cfg.StrictDefects
	results, report, err := checker.Run(ctx, app.RunOptions{
		Filter:     params.filters.AsFilter,
		TestLogger: testLogger,
		Strict:     strict,
	})
	if err != nil {
		fmt.Fprintf(stderr, "warning: %v\n", err)
	}

	fmt.Fprintln(stdout)
	for _, sc := range report.Changed() {
		fmt.Fprintf(stdout, "changed: %s %s -> %s\n", sc.ID, sc.Previous, sc.Outcome)
	}
	verifier.PrintResults(stdout, results, strict)
	if !report.OK {
		return 1
	}
	return 0
}
