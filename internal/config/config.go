package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath string
	BackupDir    string // Base path for snapshot files
	LogLevel     string

	// Retention defaults for the cleanup command and the scheduler.
	KeepDays    int
	KeepMinimum int

	// Cron expression used by the schedule command.
	BackupCron string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	keepDays, err := getEnvInt("BACKUP_KEEP_DAYS", 30)
	if err != nil {
		return nil, err
	}
	keepMinimum, err := getEnvInt("BACKUP_KEEP_MINIMUM", 5)
	if err != nil {
		return nil, err
	}

	return &Config{
		DatabasePath: getEnv("DATABASE_PATH", "./theralog.db"),
		BackupDir:    getEnv("BACKUP_DIR", "./backups"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		KeepDays:     keepDays,
		KeepMinimum:  keepMinimum,
		BackupCron:   getEnv("BACKUP_CRON", "0 3 * * *"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	return strconv.Atoi(value)
}
