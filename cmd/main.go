package main

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"todo-bot/internal/cache"
	"todo-bot/internal/config"
	"todo-bot/internal/controller"
	"todo-bot/internal/dispatcher"
	"todo-bot/internal/lifecycle"
	"todo-bot/internal/queue"
	"todo-bot/internal/repository"
	"todo-bot/internal/routes"
	"todo-bot/internal/worker"
	"todo-bot/internal/workspace"
	"todo-bot/pkg/logger"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

func main() {
	envFile := pflag.String("env-file", ".env", "file of KEY=value lines loaded into the environment")
	port := pflag.String("port", "", "HTTP port (overrides HTTP_PORT)")
	pflag.Parse()

	loadEnvFile(*envFile)

	cfg := config.Load()
	if *port != "" {
		cfg.HTTPPort = *port
	}
	config.Override(cfg)
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := workspace.NewClient(workspace.ClientConfig{
		BaseURL:   cfg.APIURL,
		AppID:     cfg.AppID,
		AppSecret: cfg.AppSecret,
	})
	if err != nil {
		logger.Error(ctx, "Platform client misconfigured", "error", err)
		os.Exit(1)
	}
	if err := client.Authenticate(ctx); err != nil {
		logger.Error(ctx, "Platform authentication failed", "error", err)
		os.Exit(1)
	}

	store := repository.New()
	d := dispatcher.New(lifecycle.New(store), client)

	var q queue.Queue
	if len(cfg.KafkaBrokers) > 0 {
		q = queue.NewKafka(ctx, queue.KafkaConfig{
			Brokers:    cfg.KafkaBrokers,
			Topic:      cfg.KafkaTopic,
			Partitions: cfg.KafkaPartitions,
		})
	} else {
		logger.Info(ctx, "Kafka not configured; using in-process event queue", "buffer", cfg.EventBuffer)
		q = queue.NewChannel(cfg.EventBuffer)
	}

	webhook := &controller.Webhook{
		AppID:  client.AppID(),
		Secret: cfg.WebhookSecret,
		Dedup:  cache.NewDedup(cache.Client(ctx), time.Duration(cfg.DedupTTL)*time.Second),
		Queue:  q,
	}
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(cfg.WebhookPath, webhook),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx, q, d.Handle)
	})
	g.Go(func() error {
		logger.Info(gctx, "HTTP server listening", "port", cfg.HTTPPort, "webhook", cfg.WebhookPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info(ctx, "Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error(ctx, "Server shutdown error", "error", err)
		}
		return q.Close()
	})

	if err := g.Wait(); err != nil {
		logger.Error(ctx, "Server error", "error", err)
		os.Exit(1)
	}
	logger.Info(ctx, "Server stopped")
}

// loadEnvFile reads a .env file and sets env vars (only if not already set).
func loadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		val = strings.TrimSpace(val)
		if len(val) >= 2 && (val[0] == '"' || val[0] == '\'') && val[len(val)-1] == val[0] {
			val = val[1 : len(val)-1]
		}
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}
