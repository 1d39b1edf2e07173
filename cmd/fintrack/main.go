package main

import (
	"bufio"
	"context"
	"os"
	"os/signal"
	"syscall"

	"fintrack/internal/app"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/store"
	"fintrack/internal/ui/term"
)

func main() {
	bootLogger := cli.SetupLogger(log.ComponentApp, config.Load().LogLevel)
	cli.LoadEnvFile(bootLogger)

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		bootLogger.Error("startup failed", log.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(log.ComponentApp, cfg.LogLevel)

	result, err := cli.InitBackend(cfg, logger)
	if err != nil {
		logger.Error("startup failed", log.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("backend cleanup failed", log.FieldError, err)
			}
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	documents := store.New(result.Backend,
		store.WithLogger(logger.WithComponent(log.ComponentStore).Logger),
		store.WithThemeDetector(term.DetectTheme),
	)
	stdin := bufio.NewReader(os.Stdin)
	presenter := term.New(os.Stdout, stdin, cfg.BackupDir)
	controller := app.New(documents, presenter,
		logger.WithComponent(log.ComponentController),
		app.WithTrendMonths(cfg.TrendMonths),
	)

	if err := controller.Start(ctx); err != nil {
		logger.Error("startup failed", log.FieldError, err)
		os.Exit(1)
	}

	if err := app.NewLoop(controller, stdin, os.Stdout).Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("command loop failed", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("goodbye")
}
