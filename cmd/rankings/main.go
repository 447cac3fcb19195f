package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/xcri/rankings/internal/cli"
	"github.com/xcri/rankings/internal/config"
	"github.com/xcri/rankings/pkg/logger"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger is not configured yet.
		_, _ = io.WriteString(stderr, "failed to load config: "+err.Error()+"\n")
		return exitError
	}

	if err := logger.Init(logger.WithOutput(stderr), logger.WithJSON(cfg.LogJSON)); err != nil {
		_, _ = io.WriteString(stderr, "failed to initialize logging: "+err.Error()+"\n")
		return exitError
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	app := cli.New(cfg,
		cli.WithInput(stdin),
		cli.WithOutput(stdout),
		cli.WithErrorOutput(stderr),
		cli.WithLogger(log.Named("cli")),
	)
	if err := app.Run(ctx, args); err != nil {
		_, _ = io.WriteString(stderr, "rankings: "+err.Error()+"\n")
		if errors.Is(err, cli.ErrUsage) || errors.Is(err, cli.ErrUnknownCommand) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}
