package main

import (
	"flag"
	"log"

	"go.uber.org/zap"

	"github.com/carhaus/autoservice-bot/internal/importer"
	"github.com/carhaus/autoservice-bot/internal/logging"
	"github.com/carhaus/autoservice-bot/internal/store"
)

func main() {
	var (
		dbPath       = flag.String("db", "./data/autoservice.db", "sqlite database path")
		usersPath    = flag.String("users", "", "path to legacy users.json export")
		requestsPath = flag.String("requests", "", "path to legacy requests.json export")
		logLevel     = flag.String("log-level", "info", "log level")
	)
	flag.Parse()

	if *usersPath == "" && *requestsPath == "" {
		log.Fatal("nothing to import: pass -users and/or -requests")
	}

	logger, err := logging.New(*logLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	st, err := store.Open(*dbPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", *dbPath), zap.Error(err))
	}
	defer st.Close()

	res, err := importer.New(st, logger).Run(*usersPath, *requestsPath)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	logger.Info("import finished",
		zap.Int("users_added", res.UsersAdded),
		zap.Int("users_skipped", res.UsersSkipped),
		zap.Int("requests_added", res.RequestsAdded),
		zap.Int("requests_skipped", res.RequestsSkipped),
	)
}
