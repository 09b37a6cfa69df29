package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"CardTable/service/cards/internal/db"
	"CardTable/service/cards/internal/logging"
	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// CLI applica i file SQL di migrazione in ordine, ognuno in una transazione.
type CLI struct {
	Files     []string      `arg:"" optional:"" help:"SQL files to apply (default: service/cards/migrations/*.sql)"`
	DSN       string        `help:"Postgres DSN" env:"DB_DSN"`
	Timeout   time.Duration `help:"Timeout for each file" default:"30s"`
	LogLevel  string        `help:"Log level" env:"LOG_LEVEL" default:"info"`
	LogFormat string        `help:"Log format (text, json, logfmt)" env:"LOG_FORMAT" default:"text"`
}

func main() {
	// Le env da .env vanno caricate prima del parsing per popolare i default.
	envPath := os.Getenv("GO_DOTENV_PATH")
	if envPath == "" {
		envPath = ".env"
	}
	_ = godotenv.Overload(envPath)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("cards-migrate"),
		kong.Description("Apply SQL migrations to the cards database"),
	)

	logger, err := logging.New(os.Stderr, cli.LogLevel, cli.LogFormat, "migrate")
	ctx.FatalIfErrorf(err)

	if err := cli.run(); err != nil {
		logger.Error("migrazione fallita", "error", err)
		ctx.Exit(1)
	}
	logger.Info("migrazioni applicate", "files", len(cli.Files))
}

func (c *CLI) run() error {
	if c.DSN == "" {
		return errors.New("DB_DSN mancante")
	}
	if len(c.Files) == 0 {
		files, err := filepath.Glob("service/cards/migrations/*.sql")
		if err != nil {
			return err
		}
		c.Files = files
	}

	database, err := db.Open(c.DSN)
	if err != nil {
		return err
	}
	defer database.Close()

	// Glob ritorna i file gia' ordinati per nome (001_, 002_, ...).
	for _, path := range c.Files {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
		err = db.ExecFile(ctx, database, string(content))
		cancel()
		if err != nil {
			return err
		}
	}
	return nil
}
