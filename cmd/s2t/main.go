package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	config "github.com/xilidan/s2t-translator/config/translator"
	"github.com/xilidan/s2t-translator/pkg/logger"
	"github.com/xilidan/s2t-translator/services/translation/app"
	"github.com/xilidan/s2t-translator/services/translation/report"
)

const (
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("s2t", flag.ContinueOnError)
	fs.SetOutput(stderr)
	output := fs.String("o", "", "output format: text, json or yaml (default from OUTPUT_FORMAT)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: s2t [-o format] <audio-file>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}

	log := logger.Default()

	cfg, err := config.Load()
	if err != nil {
		log.Error("failed to load config", slog.String("error", err.Error()))
		return exitFailure
	}
	if *output != "" {
		cfg.Output = *output
		if err := cfg.Validate(); err != nil {
			log.Error("invalid -o flag", slog.String("error", err.Error()))
			return exitUsage
		}
	}

	log = logger.New(logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		Output:     stderr,
		JSONFormat: cfg.Log.JSON,
	})

	ctx := logger.WithContext(context.Background(), log)
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log, fs.Arg(0), stdout); err != nil {
		log.Error("failed to run()", slog.String("error", err.Error()))
		return exitFailure
	}
	return 0
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, audioFile string, stdout io.Writer) error {
	usc, err := app.NewUsecase(ctx, cfg, log)
	if err != nil {
		return err
	}

	result, err := usc.Run(ctx, audioFile)
	if err != nil {
		return err
	}

	return report.Render(stdout, result, cfg.Output)
}
