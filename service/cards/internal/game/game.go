package game

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"CardTable/service/cards/internal/cards"
)

// DeckName e' il nome riservato che identifica il mazzo nelle request.
const DeckName = "deck"

// CollectionRef identifica il mazzo o una pila per nome.
type CollectionRef struct {
	pile string
}

// DeckRef riferisce il mazzo della partita.
func DeckRef() CollectionRef { return CollectionRef{} }

// PileRef riferisce una pila per nome.
func PileRef(name string) CollectionRef { return CollectionRef{pile: name} }

// ParseRef interpreta "deck" come mazzo e ogni altro nome come pila.
func ParseRef(name string) CollectionRef {
	name = strings.TrimSpace(name)
	if name == "" || name == DeckName {
		return DeckRef()
	}
	return PileRef(name)
}

// IsDeck e' vero per il riferimento al mazzo.
func (r CollectionRef) IsDeck() bool { return r.pile == "" }

// Pile ritorna il nome della pila (vuoto per il mazzo).
func (r CollectionRef) Pile() string { return r.pile }

func (r CollectionRef) String() string {
	if r.IsDeck() {
		return DeckName
	}
	return r.pile
}

// DrawPolicy decide cosa fare quando una selezione numerica supera le carte disponibili.
type DrawPolicy uint8

const (
	// Clamp prende tutte le carte disponibili senza errore.
	Clamp DrawPolicy = iota
	// Strict rifiuta la draw con ErrNotEnoughCards.
	Strict
)

// ParseDrawPolicy legge "clamp" o "strict".
func ParseDrawPolicy(s string) (DrawPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return Clamp, nil
	case "strict":
		return Strict, nil
	default:
		return Clamp, fmt.Errorf("unknown draw policy %q", s)
	}
}

func (p DrawPolicy) String() string {
	if p == Strict {
		return "strict"
	}
	return "clamp"
}

// Game aggrega il mazzo e le pile nominate di una partita.
// L'unione di mazzo e pile resta sempre l'universo di 52 carte: le carte si spostano, non si creano.
type Game struct {
	ID        string
	Deck      *cards.Collection
	Piles     map[string]*cards.Collection
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New crea una partita con il mazzo completo mescolato e nessuna pila.
func New(id string, now time.Time, rng *rand.Rand) *Game {
	return &Game{
		ID:        id,
		Deck:      cards.NewCollection(cards.FromAll(cards.All(true), rng)...),
		Piles:     make(map[string]*cards.Collection),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewPile crea una pila vuota.
func (g *Game) NewPile(name string) (*cards.Collection, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == DeckName {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPileName, name)
	}
	if g.HasPile(name) {
		return nil, fmt.Errorf("pile %q: %w", name, ErrAlreadyExists)
	}
	if g.Piles == nil {
		g.Piles = make(map[string]*cards.Collection)
	}
	pile := cards.NewCollection()
	g.Piles[name] = pile
	return pile, nil
}

// HasPile verifica se la pila esiste.
func (g *Game) HasPile(name string) bool {
	_, ok := g.Piles[name]
	return ok
}

// PileNames ritorna i nomi delle pile in ordine alfabetico.
func (g *Game) PileNames() []string {
	names := make([]string, 0, len(g.Piles))
	for name := range g.Piles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Collection risolve un riferimento nella collezione corrispondente.
func (g *Game) Collection(ref CollectionRef) (*cards.Collection, error) {
	if ref.IsDeck() {
		return g.Deck, nil
	}
	pile, ok := g.Piles[ref.pile]
	if !ok {
		return nil, fmt.Errorf("pile %q: %w", ref.pile, ErrNotFound)
	}
	return pile, nil
}

// Draw sposta la selezione da una collezione all'altra e ritorna le carte spostate.
// Con from == to la partita resta invariata.
func (g *Game) Draw(from, to CollectionRef, sel cards.Selection, policy DrawPolicy, rng *rand.Rand) ([]cards.Card, error) {
	source, err := g.Collection(from)
	if err != nil {
		return nil, err
	}
	target, err := g.Collection(to)
	if err != nil {
		return nil, err
	}
	if policy == Strict {
		if err := sel.Shortfall(source.Len()); err != nil {
			return nil, fmt.Errorf("draw from %s: %w", from, err)
		}
	}
	return source.Draw(sel, target, rng), nil
}

// CardCount conta le carte fra mazzo e pile.
func (g *Game) CardCount() int {
	total := g.Deck.Len()
	for _, pile := range g.Piles {
		total += pile.Len()
	}
	return total
}
