package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/akmmp241/product-catalog/shared"
)

func main() {
	shared.LoadDotEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, net.Listen)
	stop()

	if err != nil {
		exitWithError(err)
	}
}

func run(ctx context.Context, listen listenFunc) error {
	cfg, err := LoadConfiguration()
	if err != nil {
		return err
	}

	slog.SetDefault(shared.NewLogger(os.Stdout, cfg.LogLevel, ServiceName))

	runtime, err := NewRuntime(cfg)
	if err != nil {
		return err
	}
	runtime.listen = listen

	return runtime.Run(ctx)
}

func exitWithError(err error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var configErr *ConfigurationError
	var bindErr *ListenBindError
	switch {
	case errors.As(err, &configErr):
		logger.Error(configErr.Error())
	case errors.As(err, &bindErr):
		logger.Error("Error occurred while binding port", "addr", bindErr.Addr, "err", bindErr.Err)
	default:
		logger.Error("Product Service stopped", "err", err)
	}
	os.Exit(1)
}
