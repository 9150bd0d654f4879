package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/aretw0/tgflow"
	"github.com/aretw0/tgflow/internal/cli"
	"github.com/aretw0/tgflow/internal/httpapi"
	"github.com/aretw0/tgflow/internal/logging"
	"github.com/aretw0/tgflow/pkg/adapters/console"
	redisAdapter "github.com/aretw0/tgflow/pkg/adapters/redis"
	"github.com/aretw0/tgflow/pkg/adapters/telegram"
	"github.com/aretw0/tgflow/pkg/observability"
	"github.com/aretw0/tgflow/pkg/ports"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the demo bot",
	Long:  `Starts the demo bot against Telegram when a token is configured, or in console mode otherwise.`,
	Run: func(cmd *cobra.Command, args []string) {
		configPath, _ := cmd.Flags().GetString("config")
		cfg, err := cli.LoadConfig(configPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if err := run(cfg); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(cfg *cli.Config) error {
	logger := logging.New(cfg.Level())

	var store ports.SessionStore
	var locker ports.DistributedLocker
	if cfg.Redis.Addr != "" {
		client := backend.NewClient(&backend.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		store = redisAdapter.NewStoreFromClient(client)
		locker = redisAdapter.NewLocker(client, "tgflow:lock:")
		logger.Info("using redis sessions", "addr", cfg.Redis.Addr)
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	opts := []tgflow.Option{
		tgflow.WithLogger(logger),
		tgflow.WithMetrics(metrics),
		tgflow.WithSessionTTL(cfg.SessionTTL.Std()),
	}
	if store != nil {
		opts = append(opts, tgflow.WithStore(store))
	}
	if locker != nil {
		opts = append(opts, tgflow.WithLocker(locker))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Telegram.Token == "" {
		ct := console.New()
		app := tgflow.New(ct, opts...)
		if err := cli.RegisterDemo(app); err != nil {
			return err
		}
		logger.Info("no telegram token configured, starting console mode")
		return console.Run(ctx, ct, os.Stdin, app.HandleUpdate)
	}

	bot, err := telegram.New(cfg.Telegram.Token)
	if err != nil {
		return err
	}
	app := tgflow.New(bot, opts...)
	if err := cli.RegisterDemo(app); err != nil {
		return err
	}

	if cfg.HTTP.Addr != "" {
		srv := &http.Server{
			Addr: cfg.HTTP.Addr,
			Handler: httpapi.NewHandler(httpapi.Config{
				Handler:       app.HandleUpdate,
				WebhookSecret: cfg.Telegram.WebhookSecret,
				Logger:        logger,
			}),
		}
		go func() {
			logger.Info("http listener up", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("http listener failed", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown incomplete", "err", err)
			}
		}()
	}

	logger.Info("starting long poll", "version", tgflow.Version)
	err = telegram.Poll(ctx, bot, app.HandleUpdate, telegram.WithPollLogger(logger))
	if err == context.Canceled {
		logger.Info("shutting down")
		return nil
	}
	return err
}
