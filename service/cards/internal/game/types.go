package game

import (
	"context"
	"time"

	"CardTable/service/cards/internal/cards"
)

// Contratti e modelli del dominio "game".
// Espongono cosa serve ai layer HTTP/gRPC senza dettagli di DB o lock.
type Manager interface {
	CreateGame(ctx context.Context) (*Game, error)
	GetGame(ctx context.Context, id string) (*Game, error)
	GetDeck(ctx context.Context, id string) (*cards.Collection, error)
	GetPile(ctx context.Context, id, name string) (*cards.Collection, error)
	CreatePile(ctx context.Context, id, name string) (*Game, error)
	Draw(ctx context.Context, id string, from, to CollectionRef, sel cards.Selection) (*Game, []cards.Card, error)
}

// Repository espone load/save della partita completa.
type Repository interface {
	Load(ctx context.Context, id string) (*Game, error)
	Save(ctx context.Context, g *Game) error
}

// View e' la forma JSON di una partita nelle risposte.
type View struct {
	ID        string                       `json:"id"`
	Deck      *cards.Collection            `json:"deck"`
	Piles     map[string]*cards.Collection `json:"piles"`
	Version   int64                        `json:"version"`
	CreatedAt time.Time                    `json:"created_at"`
	UpdatedAt time.Time                    `json:"updated_at"`
}

// View costruisce la vista serializzabile della partita.
func (g *Game) View() View {
	piles := g.Piles
	if piles == nil {
		piles = map[string]*cards.Collection{}
	}
	return View{
		ID:        g.ID,
		Deck:      g.Deck,
		Piles:     piles,
		Version:   g.Version,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}
