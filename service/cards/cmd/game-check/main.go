package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"CardTable/service/cards/internal/cards"
	"CardTable/service/cards/internal/db"
	"CardTable/service/cards/internal/game"
	"CardTable/service/cards/internal/logging"
	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// CLI stampa lo stato di una partita dal DB e verifica che contenga le 52 carte.
type CLI struct {
	GameID  string        `help:"Game to inspect (default: most recently updated)" env:"GAME_ID"`
	DSN     string        `help:"Postgres DSN" env:"DB_DSN"`
	Timeout time.Duration `help:"Query timeout" default:"10s"`
	NoColor bool          `help:"Disable colored output"`
}

func main() {
	// 1) Carica env per connessione DB.
	envPath := os.Getenv("GO_DOTENV_PATH")
	if envPath == "" {
		envPath = "service/cards/.env"
	}
	_ = godotenv.Overload(envPath)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("game-check"),
		kong.Description("Inspect a stored game and verify its cards"),
	)
	color.NoColor = color.NoColor || cli.NoColor

	logger, err := logging.New(os.Stderr, "info", "text", "game-check")
	ctx.FatalIfErrorf(err)

	if err := cli.run(); err != nil {
		logger.Error("verifica fallita", "error", err)
		ctx.Exit(1)
	}
}

func (c *CLI) run() error {
	if c.DSN == "" {
		return errors.New("DB_DSN mancante")
	}
	database, err := db.Open(c.DSN)
	if err != nil {
		return err
	}
	defer database.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	// 2) Risolve la partita (da flag/env o l'ultima aggiornata).
	repo := game.NewRepo(database)
	id := c.GameID
	if id == "" {
		if id, err = repo.LatestGameID(ctx); err != nil {
			return fmt.Errorf("nessuna partita trovata: %w", err)
		}
	}

	g, err := repo.Load(ctx, id)
	if err != nil {
		return err
	}

	// 3) Stampa mazzo e pile, poi verifica l'invariante delle 52 carte.
	fmt.Printf("%s %s  version=%d  updated=%s\n", color.CyanString("game"), color.HiWhiteString(g.ID),
		g.Version, g.UpdatedAt.Format(time.RFC3339))
	printCollection(game.DeckName, g.Deck)
	for _, name := range g.PileNames() {
		printCollection(name, g.Piles[name])
	}

	if err := checkCards(g); err != nil {
		fmt.Println(color.RedString("KO"), err)
		return err
	}
	fmt.Println(color.GreenString("OK"), "52 carte, nessun duplicato")
	return nil
}

func printCollection(name string, c *cards.Collection) {
	codes := make([]string, 0, c.Len())
	for _, card := range c.Cards() {
		codes = append(codes, colorCard(card))
	}
	fmt.Printf("%s (%d): %s\n", color.CyanString(name), c.Len(), strings.Join(codes, " "))
}

// colorCard usa il rosso per cuori e quadri.
func colorCard(card cards.Card) string {
	if card.Suit == cards.Hearts || card.Suit == cards.Diamonds {
		return color.RedString(card.Code())
	}
	return color.HiWhiteString(card.Code())
}

// checkCards verifica che ogni carta compaia esattamente una volta fra mazzo e pile.
func checkCards(g *game.Game) error {
	seen := make(map[cards.Card]string, 52)
	collections := map[string]*cards.Collection{game.DeckName: g.Deck}
	for name, pile := range g.Piles {
		collections[name] = pile
	}
	for name, c := range collections {
		for _, card := range c.Cards() {
			if prev, ok := seen[card]; ok {
				return fmt.Errorf("carta %s presente in %s e %s", card, prev, name)
			}
			seen[card] = name
		}
	}
	if len(seen) != 52 || g.CardCount() != 52 {
		return fmt.Errorf("attese 52 carte, trovate %d", len(seen))
	}
	return nil
}
