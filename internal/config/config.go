package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot process.
type Config struct {
	// Token authenticates the bot against the Telegram API.
	Token string
	// AdminIDs are the chat identities with access to the admin menu.
	AdminIDs []int64
	// MileageAdminID is the optional specialist that receives
	// previous-maintenance mileage inquiries. Zero when unset.
	MileageAdminID int64
	// DBPath is the sqlite database file location.
	DBPath string
	// LogLevel configures logging verbosity.
	LogLevel string
}

// Load reads configuration from environment variables, consulting a .env
// file when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Token:    os.Getenv("TELEGRAM_BOT_TOKEN"),
		DBPath:   getEnv("DB_PATH", "./data/autoservice.db"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}

	admins, err := parseIDList(os.Getenv("ADMIN_IDS"))
	if err != nil {
		return nil, fmt.Errorf("invalid ADMIN_IDS: %w", err)
	}
	if len(admins) == 0 {
		return nil, fmt.Errorf("at least one admin ID is required in ADMIN_IDS")
	}
	cfg.AdminIDs = admins

	if raw := os.Getenv("MILEAGE_ADMIN_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MILEAGE_ADMIN_ID %q: %w", raw, err)
		}
		cfg.MileageAdminID = id
	}

	return cfg, nil
}

// IsAdmin reports whether the identity belongs to the configured admin set.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func parseIDList(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
