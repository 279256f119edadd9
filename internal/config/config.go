package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Env           string `validate:"required,oneof=dev prod"`
	RedisAddr     string `validate:"required,hostname_port"`
	RedisDB       int    `validate:"gte=0"`
	Stream        string `validate:"required"`
	ConsumerGroup string `validate:"required"`
	ScheduledKey  string `validate:"required"`
	APIKey        string `validate:"required"`
	Port          string `validate:"required,numeric"`
	HandlersFile  string `validate:"required"`

	Spread struct {
		Duration int    `validate:"gte=0"` // seconds, 0 = no spread
		Method   string `validate:"required,oneof=rand random mod modulo"`
	}

	Release struct {
		Batch        int           `validate:"gte=1"`
		Rate         int           `validate:"gte=0"` // jobs/s, 0 = unlimited
		PollInterval time.Duration `validate:"gt=0"`
	}

	Log struct {
		Level string `validate:"required,oneof=debug info warn error"`
		File  string
	}
}

var validate = validator.New()

// Load reads configuration from the environment and an optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	c.Env = getEnv("ENV", "prod")
	c.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	c.RedisDB = getEnvInt("REDIS_DB", 0)
	c.Stream = getEnv("STREAM", "jobs:stream")
	c.ConsumerGroup = getEnv("CONSUMER_GROUP", "jobs:cg")
	c.ScheduledKey = getEnv("SCHEDULED_KEY", "jobs:scheduled")
	c.APIKey = getEnv("API_KEY", "devkey")
	c.Port = getEnv("PORT", "8080")
	c.HandlersFile = getEnv("HANDLERS_FILE", "handlers.yaml")
	c.Spread.Duration = getEnvInt("SPREAD_DURATION", 3600)
	c.Spread.Method = strings.ToLower(getEnv("SPREAD_METHOD", "rand"))
	c.Release.Batch = getEnvInt("RELEASE_BATCH", 10)
	c.Release.Rate = getEnvInt("RELEASE_RATE", 0)
	c.Log.Level = strings.ToLower(getEnv("LOG_LEVEL", "info"))
	c.Log.File = os.Getenv("LOG_FILE")

	poll, err := getEnvDuration("POLL_INTERVAL", time.Second)
	if err != nil {
		return Config{}, err
	}
	c.Release.PollInterval = poll

	if err := validate.Struct(c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		_, err := fmt.Sscanf(v, "%d", &n)
		if err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
