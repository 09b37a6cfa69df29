package cards

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

// ErrDuplicateCard indica una collezione serializzata con carte ripetute.
var ErrDuplicateCard = errors.New("duplicate card in collection")

// Collection e' una sequenza ordinata di carte senza duplicati.
// La cima (top) e' la fine della sequenza, il fondo (bottom) l'inizio.
type Collection struct {
	cards []Card
}

// NewCollection crea una collezione; eventuali duplicati vengono scartati.
func NewCollection(list ...Card) *Collection {
	c := &Collection{}
	c.Add(list...)
	return c
}

// Len ritorna il numero di carte.
func (c *Collection) Len() int {
	return len(c.cards)
}

// Cards ritorna una copia delle carte in ordine.
func (c *Collection) Cards() []Card {
	return slices.Clone(c.cards)
}

// Contains verifica la presenza di una carta.
func (c *Collection) Contains(card Card) bool {
	return slices.Contains(c.cards, card)
}

// Select ritorna le carte che la selezione prenderebbe, senza modificare la collezione.
func (c *Collection) Select(sel Selection, rng *rand.Rand) []Card {
	selected, _ := Resolve(c.cards, sel, rng)
	return selected
}

// Add aggiunge le carte in cima, rimuovendo prima quelle gia' presenti.
func (c *Collection) Add(list ...Card) {
	incoming := dedupe(list)
	c.cards = append(without(c.cards, incoming), incoming...)
}

// Remove elimina le carte per valore, mantenendo l'ordine delle altre.
func (c *Collection) Remove(list ...Card) {
	c.cards = without(c.cards, list)
}

// Draw sposta le carte selezionate in cima a into e le ritorna.
// I due lati vengono aggiornati insieme, dopo aver calcolato entrambi i risultati.
// Draw verso la stessa collezione non modifica nulla e non sposta carte.
func (c *Collection) Draw(sel Selection, into *Collection, rng *rand.Rand) []Card {
	if into == nil || into == c {
		return nil
	}
	selected, residual := Resolve(c.cards, sel, rng)
	if len(selected) == 0 {
		return nil
	}
	target := append(without(into.cards, selected), selected...)
	c.cards, into.cards = residual, target
	return slices.Clone(selected)
}

func (c *Collection) String() string {
	return fmt.Sprint(c.cards)
}

// MarshalJSON serializza la collezione come array di codici.
func (c *Collection) MarshalJSON() ([]byte, error) {
	codes := make([]string, len(c.cards))
	for i, card := range c.cards {
		codes[i] = card.Code()
	}
	return json.Marshal(codes)
}

// UnmarshalJSON legge un array di codici e rifiuta i duplicati.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var list []Card
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if len(dedupe(list)) != len(list) {
		return ErrDuplicateCard
	}
	c.cards = list
	return nil
}

func without(src, drop []Card) []Card {
	if len(drop) == 0 {
		return slices.Clone(src)
	}
	skip := make(map[Card]bool, len(drop))
	for _, card := range drop {
		skip[card] = true
	}
	result := make([]Card, 0, len(src))
	for _, card := range src {
		if !skip[card] {
			result = append(result, card)
		}
	}
	return result
}

func dedupe(list []Card) []Card {
	seen := make(map[Card]bool, len(list))
	result := make([]Card, 0, len(list))
	for _, card := range list {
		if !seen[card] {
			seen[card] = true
			result = append(result, card)
		}
	}
	return result
}
