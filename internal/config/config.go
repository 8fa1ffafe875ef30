package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds every runtime setting, populated from the environment.
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL string `envconfig:"DB_URL" required:"true"`
	RedisURL    string `envconfig:"REDIS_URL"`
	JWTSecret   string `envconfig:"JWT_SECRET" required:"true"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogConsole  bool   `envconfig:"LOG_CONSOLE" default:"false"`

	// Realtime tuning
	SendBuffer   int `envconfig:"WS_SEND_BUFFER" default:"128"`
	ReadLimit    int `envconfig:"WS_READ_LIMIT" default:"1048576"`
	LoginCodeTTL int `envconfig:"LOGIN_CODE_TTL_SECONDS" default:"300"`

	// Queue worker tuning
	QueueConcurrency int `envconfig:"QUEUE_CONCURRENCY" default:"10"`
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (Config, error) {
	// .env is a developer convenience; its absence is not an error.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}
