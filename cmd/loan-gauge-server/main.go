package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/loan-gauge/internal/cache"
	"github.com/iwvelando/loan-gauge/internal/logging"
	"github.com/iwvelando/loan-gauge/internal/server"
	"github.com/iwvelando/loan-gauge/pkg/constants"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var configPath, address, maxRequestSize, logLevel string
	var showVersion bool

	flagSet := pflag.NewFlagSet("loan-gauge-server", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&configPath, "config", "c", constants.DefaultServerConfigFile, "path to server configuration file")
	flagSet.StringVar(&address, "address", "", "listen address override, e.g. :8080")
	flagSet.StringVar(&maxRequestSize, "max-request-size", "", "request body limit override, e.g. 256K")
	flagSet.StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flagSet.BoolVar(&showVersion, "version", false, "print the version and exit")
	if err := flagSet.Parse(args); err != nil {
		return err
	}
	if showVersion {
		_, err := fmt.Fprintf(stdout, "loan-gauge-server %s\n", version)
		return err
	}

	cfg, err := server.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", configPath, err)
		return err
	}
	if err := applyOverrides(cfg, address, maxRequestSize); err != nil {
		fmt.Fprintf(stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"invalid command line override\", \"error\": \"%v\"}\n", err)
		return err
	}

	logger, err := logging.NewLogger(cfg.Logging, logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	store, err := cache.New(cfg.Cache)
	if err != nil {
		logger.Error("failed to configure cache",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return err
	}
	if redis, ok := store.(*cache.Redis); ok {
		defer func() {
			_ = redis.Close()
		}()
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redis.Ping(pingCtx); err != nil {
			logger.Warn("redis cache unreachable, schedules will be recomputed",
				zap.String("op", "main"),
				zap.String("address", cfg.Cache.RedisAddress),
				zap.Error(err),
			)
		}
		cancel()
	}

	opts, err := cfg.Options(version, store)
	if err != nil {
		logger.Error("invalid server configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           server.NewHandler(logger, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting loan-gauge server",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.String("version", version),
			zap.String("cache", cfg.Cache.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			logger.Error("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down server",
			zap.String("op", "main"),
		)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
		return err
	}
	logger.Info("server exited",
		zap.String("op", "main"),
	)
	return nil
}

// applyOverrides applies command line values on top of the loaded config.
func applyOverrides(cfg *server.Config, address, maxRequestSize string) error {
	if address != "" {
		cfg.Address = address
	}
	if maxRequestSize != "" {
		size, err := server.ParseSize(maxRequestSize)
		if err != nil {
			return fmt.Errorf("--max-request-size: %w", err)
		}
		if size <= 0 {
			return fmt.Errorf("--max-request-size: must be positive, got %s", maxRequestSize)
		}
		cfg.SetRequestSizeBytes(size)
	}
	return nil
}
