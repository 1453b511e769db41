package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken    string
	BotUsername string // public handle, used to build category deep-links
	AdminIDs    []int64
	DatabaseURL string
	HealthPort  string
}

// Load reads configuration from environment variables, with an optional
// .env file and a config.json fallback for admin IDs.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.Println("No", envFile, "file found")
	}

	cfg := Config{
		BotToken:    getEnv("BOT_TOKEN", ""),
		BotUsername: getEnv("BOT_USERNAME", ""),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		HealthPort:  getEnv("PORT", "10000"),
	}

	admins, err := parseAdminIDs(getEnv("ADMIN_IDS", ""))
	if err != nil {
		return Config{}, err
	}
	if len(admins) == 0 {
		admins, err = adminIDsFromFile(getEnv("CONFIG_FILE", "config.json"))
		if err != nil {
			return Config{}, err
		}
	}
	cfg.AdminIDs = admins

	if cfg.BotToken == "" {
		return Config{}, errors.New("BOT_TOKEN not found in environment variables")
	}
	if cfg.BotUsername == "" {
		return Config{}, errors.New("BOT_USERNAME not found in environment variables")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("DATABASE_URL not found in environment variables")
	}
	if len(cfg.AdminIDs) == 0 {
		return Config{}, errors.New("admin IDs not found in environment variables or config file")
	}
	return cfg, nil
}

// Gets the env by key or fallbacks
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func parseAdminIDs(raw string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid admin ID %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func adminIDsFromFile(path string) ([]int64, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var file struct {
		AdminIDs []int64 `json:"admin_ids"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return file.AdminIDs, nil
}
