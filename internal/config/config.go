package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the application reads from the environment.
// Components receive the values they need at construction; nothing
// reads the process environment after startup.
type Config struct {
	Port     string
	DBPath   string
	Env      string // "dev" or "production"; selects the expense table partition
	LogLevel string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	JWTSecret string
}

// Load reads an optional .env file, then the process environment.
// JWT_SECRET is required outside dev so a production deploy cannot
// silently mint unverifiable tokens.
func Load() (Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:             getenv("KHARCHA_PORT", "8080"),
		DBPath:           getenv("KHARCHA_DB_PATH", "kharcha.db"),
		Env:              getenv("KHARCHA_ENV", "dev"),
		LogLevel:         getenv("KHARCHA_LOG_LEVEL", "info"),
		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
		JWTSecret:        os.Getenv("JWT_SECRET"),
	}

	if cfg.Env != "dev" && cfg.Env != "production" {
		return Config{}, fmt.Errorf("invalid KHARCHA_ENV %q: must be dev or production", cfg.Env)
	}
	if cfg.JWTSecret == "" {
		if cfg.Production() {
			return Config{}, fmt.Errorf("JWT_SECRET is required when KHARCHA_ENV=production")
		}
		cfg.JWTSecret = "dev-only-insecure-secret"
	}

	return cfg, nil
}

// Production reports whether the deployment environment is production.
// Controls the Secure cookie attribute and the expense table partition.
func (c Config) Production() bool {
	return c.Env == "production"
}

// ExpenseTable returns the expense table partition for this environment.
func (c Config) ExpenseTable() string {
	if c.Production() {
		return "expenses_prod"
	}
	return "expenses_dev"
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
