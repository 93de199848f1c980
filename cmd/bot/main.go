package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/carhaus/autoservice-bot/internal/bot"
	"github.com/carhaus/autoservice-bot/internal/config"
	"github.com/carhaus/autoservice-bot/internal/logging"
	"github.com/carhaus/autoservice-bot/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer st.Close()

	b, err := bot.New(cfg, st, logger)
	if err != nil {
		logger.Fatal("failed to initialize bot", zap.Error(err))
	}

	if err := b.Start(); err != nil {
		logger.Fatal("failed to start bot", zap.Error(err))
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	b.Stop()
}
