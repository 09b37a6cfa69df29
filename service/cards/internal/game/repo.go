package game

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"CardTable/service/cards/internal/cards"
	"github.com/lib/pq"
)

// Accesso dati delle partite su Postgres (persistence layer).
// Una riga in games (mazzo + versione) e una riga in piles per ogni pila,
// con le carte serializzate come array JSON di codici.
type Repo struct {
	db *sql.DB
}

// NewRepo collega il repository a una connessione SQL.
func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

// codice Postgres per unique_violation.
const uniqueViolation = "23505"

// Load carica la partita con tutte le sue pile.
func (r *Repo) Load(ctx context.Context, id string) (*Game, error) {
	const gameQuery = `
SELECT id, deck, version, created_at, updated_at
FROM games
WHERE id = $1`

	var (
		g    Game
		deck []byte
	)
	err := r.db.QueryRowContext(ctx, gameQuery, id).Scan(&g.ID, &deck, &g.Version, &g.CreatedAt, &g.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		slog.Error("errore lettura partita", "error", err, "game_id", id)
		return nil, err
	}

	g.Deck = cards.NewCollection()
	if err := json.Unmarshal(deck, g.Deck); err != nil {
		return nil, fmt.Errorf("decode deck of game %s: %w", id, err)
	}

	piles, err := r.loadPiles(ctx, id)
	if err != nil {
		return nil, err
	}
	g.Piles = piles
	return &g, nil
}

func (r *Repo) loadPiles(ctx context.Context, gameID string) (map[string]*cards.Collection, error) {
	const query = `
SELECT name, cards
FROM piles
WHERE game_id = $1`

	rows, err := r.db.QueryContext(ctx, query, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	piles := make(map[string]*cards.Collection)
	for rows.Next() {
		var (
			name string
			data []byte
		)
		if err := rows.Scan(&name, &data); err != nil {
			return nil, err
		}
		pile := cards.NewCollection()
		if err := json.Unmarshal(data, pile); err != nil {
			return nil, fmt.Errorf("decode pile %q of game %s: %w", name, gameID, err)
		}
		piles[name] = pile
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return piles, nil
}

// Save salva mazzo e pile in una transazione.
// La riga games viene aggiornata solo se la versione e' ancora quella letta;
// se non esiste viene inserita. Al successo g.Version viene incrementata.
func (r *Repo) Save(ctx context.Context, g *Game) error {
	deck, err := json.Marshal(g.Deck)
	if err != nil {
		return fmt.Errorf("encode deck: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveGameRow(ctx, tx, g, deck); err != nil {
		return err
	}
	for _, name := range g.PileNames() {
		if err := savePileRow(ctx, tx, g.ID, name, g.Piles[name]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		slog.Error("errore commit partita", "error", err, "game_id", g.ID)
		return err
	}
	g.Version++
	return nil
}

func saveGameRow(ctx context.Context, tx *sql.Tx, g *Game, deck []byte) error {
	const update = `
UPDATE games
SET deck = $2, version = version + 1, updated_at = $4
WHERE id = $1 AND version = $3`

	result, err := tx.ExecContext(ctx, update, g.ID, deck, g.Version, g.UpdatedAt)
	if err != nil {
		slog.Error("errore update partita", "error", err, "game_id", g.ID)
		return err
	}
	if affected, err := result.RowsAffected(); err != nil || affected > 0 {
		return err
	}

	const insert = `
INSERT INTO games (id, deck, version, created_at, updated_at)
VALUES ($1, $2, $3 + 1, $4, $5)
ON CONFLICT (id) DO NOTHING`

	result, err = tx.ExecContext(ctx, insert, g.ID, deck, g.Version, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		slog.Error("errore insert partita", "error", err, "game_id", g.ID)
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// La riga esiste ma con un'altra versione: qualcuno ha salvato prima di noi.
		return fmt.Errorf("game %s at version %d: %w", g.ID, g.Version, ErrVersionConflict)
	}
	return nil
}

func savePileRow(ctx context.Context, tx *sql.Tx, gameID, name string, pile *cards.Collection) error {
	data, err := json.Marshal(pile)
	if err != nil {
		return fmt.Errorf("encode pile %q: %w", name, err)
	}

	const update = `
UPDATE piles
SET cards = $3
WHERE game_id = $1 AND name = $2`

	result, err := tx.ExecContext(ctx, update, gameID, name, data)
	if err != nil {
		return err
	}
	if affected, err := result.RowsAffected(); err != nil || affected > 0 {
		return err
	}

	const insert = `
INSERT INTO piles (game_id, name, cards)
VALUES ($1, $2, $3)`

	if _, err := tx.ExecContext(ctx, insert, gameID, name, data); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("pile %q of game %s: %w", name, gameID, ErrVersionConflict)
		}
		slog.Error("errore insert pila", "error", err, "game_id", gameID, "pile", name)
		return err
	}
	return nil
}

// LatestGameID ritorna la partita aggiornata piu' di recente (usato da game-check).
func (r *Repo) LatestGameID(ctx context.Context) (string, error) {
	const query = `
SELECT id
FROM games
ORDER BY updated_at DESC
LIMIT 1`

	var id string
	err := r.db.QueryRowContext(ctx, query).Scan(&id)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return id, err
}
