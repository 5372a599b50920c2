package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	AppPort       string
	AppEnv        string
	SessionDBPath string
	WebhookSecret string
	JWTSecret     string
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:        os.Getenv("DB_HOST"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		DBPort:        os.Getenv("DB_PORT"),
		AppPort:       os.Getenv("APP_PORT"),
		AppEnv:        os.Getenv("APP_ENV"),
		SessionDBPath: os.Getenv("SESSION_DB_PATH"),
		WebhookSecret: os.Getenv("GOCARDLESS_WEBHOOK_SECRET"),
		JWTSecret:     os.Getenv("SECRET_KEY"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	if cfg.SessionDBPath == "" {
		cfg.SessionDBPath = "sessions.db"
	}

	return cfg
}

// IsProduction reports whether the service runs against live gateway credentials.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
