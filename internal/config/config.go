package config

import (
	"os"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	// A helper function to get a required env var. It will fail if the env var is not set.
	getEnv := func(key string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		log.Fatalf("Error: Required environment variable %s is not set.", key)
		return "" // This line is never reached
	}

	getEnvOr := func(key, fallback string) string {
		if value, ok := os.LookupEnv(key); ok {
			return value
		}
		return fallback
	}

	kFactor, err := strconv.ParseFloat(getEnvOr("K_FACTOR", "32"), 64)
	if err != nil || kFactor <= 0 {
		log.Fatalf("Error: K_FACTOR must be a positive number, got %q", os.Getenv("K_FACTOR"))
	}
	initialMMR, err := strconv.Atoi(getEnvOr("INITIAL_MMR", "1000"))
	if err != nil || initialMMR < 0 {
		log.Fatalf("Error: INITIAL_MMR must be a non-negative integer, got %q", os.Getenv("INITIAL_MMR"))
	}

	cfg := Config{
		DBName:        getEnv("DB_NAME"),
		MigrationsDir: getEnvOr("MIGRATIONS_DIR", "./migrations"),
		Port:          getEnv("PORT"),
		Slack: SlackConfig{
			Token:         getEnv("SLACK_BOT_TOKEN"),
			ChannelID:     getEnv("SLACK_CHANNEL_ID"),
			SigningSecret: getEnv("SLACK_SIGNING_SECRET"),
		},
		Turso: TursoConfig{
			PrimaryURL: getEnvOr("TURSO_PRIMARY_URL", ""),
			AuthToken:  getEnvOr("TURSO_AUTH_TOKEN", ""),
		},
		ProjectID: getEnv("GCP_PROJECT"),
		Rating: RatingConfig{
			KFactor:    kFactor,
			InitialMMR: initialMMR,
		},
	}
	return cfg
}
