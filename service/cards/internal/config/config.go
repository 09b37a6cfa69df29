package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config contiene le impostazioni runtime per cards-svc.
type Config struct {
	HTTPAddr        string
	GRPCAddr        string
	DBDSN           string
	RedisAddr       string
	RedisPassword   string
	LockTTL         time.Duration
	LockRetries     int
	LockBackoff     time.Duration
	DrawPolicy      string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// Load legge le variabili d'ambiente con default minimi.
func Load() (Config, error) {
	dbDSN := os.Getenv("DB_DSN")
	if dbDSN == "" {
		dbDSN = buildDSN()
	}

	cfg := Config{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8080"),
		GRPCAddr:      getEnv("GRPC_ADDR", ":50061"),
		DBDSN:         dbDSN,
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DrawPolicy:    getEnv("DRAW_POLICY", "clamp"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.LockTTL, err = getDuration("LOCK_TTL", 5*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LockBackoff, err = getDuration("LOCK_BACKOFF", 50*time.Millisecond); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.LockRetries, err = getInt("LOCK_RETRIES", 3); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// getEnv ritorna il fallback quando la variabile non è presente.
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, value)
	}
	return n, nil
}

func buildDSN() string {
	host := os.Getenv("DB_HOST")
	port := getEnv("DB_PORT", "5432")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	name := os.Getenv("DB_NAME")
	sslmode := getEnv("DB_SSLMODE", "require")
	if host == "" || user == "" || name == "" {
		return ""
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, password, host, port, name, sslmode)
}
