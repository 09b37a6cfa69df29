package cards

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
)

// ErrNotEnoughCards indica una selezione numerica oltre le carte disponibili.
// Viene usato solo dalla policy strict; la risoluzione base applica il clamp.
var ErrNotEnoughCards = errors.New("not enough cards")

// SelectionKind distingue le forme di selezione.
type SelectionKind uint8

const (
	SelectEmpty SelectionKind = iota
	SelectAll
	SelectTop
	SelectBottom
	SelectRandom
	SelectFilter
	SelectCards
)

var kindNames = [...]string{"empty", "all", "top", "bottom", "random", "filter", "cards"}

func (k SelectionKind) String() string {
	if int(k) >= len(kindNames) {
		return fmt.Sprintf("SelectionKind(%d)", uint8(k))
	}
	return kindNames[k]
}

// Selection descrive quali carte prendere da una collezione.
// I campi usati dipendono da Kind; i costruttori sotto sono il modo previsto per crearla.
type Selection struct {
	Kind     SelectionKind
	Count    int
	Shuffled bool
	Suits    []Suit
	Values   []Value
	Cards    []Card
}

func Empty() Selection { return Selection{Kind: SelectEmpty} }

func All(shuffled bool) Selection { return Selection{Kind: SelectAll, Shuffled: shuffled} }

func Top(n int) Selection { return Selection{Kind: SelectTop, Count: n} }

func Bottom(n int) Selection { return Selection{Kind: SelectBottom, Count: n} }

func Random(n int) Selection { return Selection{Kind: SelectRandom, Count: n} }

// Filter seleziona per seme e/o valore. Entrambi vuoti equivale a Empty.
func Filter(suits []Suit, values []Value) Selection {
	return Selection{Kind: SelectFilter, Suits: suits, Values: values}
}

// Explicit seleziona esattamente le carte indicate, se presenti nella sorgente.
func Explicit(list ...Card) Selection { return Selection{Kind: SelectCards, Cards: list} }

func (s Selection) String() string {
	switch s.Kind {
	case SelectAll:
		return fmt.Sprintf("all(shuffled=%t)", s.Shuffled)
	case SelectTop, SelectBottom, SelectRandom:
		return fmt.Sprintf("%s(%d)", s.Kind, s.Count)
	case SelectFilter:
		return fmt.Sprintf("filter(suits=%v, values=%v)", s.Suits, s.Values)
	case SelectCards:
		return fmt.Sprintf("cards(%v)", s.Cards)
	default:
		return s.Kind.String()
	}
}

// Shortfall ritorna ErrNotEnoughCards se una selezione numerica chiede piu' carte
// di quelle disponibili. Le altre forme non falliscono mai.
func (s Selection) Shortfall(available int) error {
	switch s.Kind {
	case SelectTop, SelectBottom, SelectRandom:
		if s.Count > available {
			return fmt.Errorf("%w: requested %d, available %d", ErrNotEnoughCards, s.Count, available)
		}
	}
	return nil
}

// Resolve applica la selezione a src e ritorna le carte selezionate e il residuo.
// src non viene modificato. Con rng nil si usa la sorgente globale di math/rand/v2.
func Resolve(src []Card, sel Selection, rng *rand.Rand) (selected, residual []Card) {
	switch sel.Kind {
	case SelectAll:
		selected = append([]Card(nil), src...)
		if sel.Shuffled {
			shuffle(selected, rng)
		}
		return selected, nil
	case SelectTop:
		n := clamp(sel.Count, len(src))
		split := len(src) - n
		return append([]Card(nil), src[split:]...), append([]Card(nil), src[:split]...)
	case SelectBottom:
		n := clamp(sel.Count, len(src))
		return append([]Card(nil), src[:n]...), append([]Card(nil), src[n:]...)
	case SelectRandom:
		return pickRandom(src, clamp(sel.Count, len(src)), rng)
	case SelectFilter:
		if len(sel.Suits) == 0 && len(sel.Values) == 0 {
			break
		}
		return partition(src, func(c Card) bool { return sel.matches(c) })
	case SelectCards:
		return pickExplicit(src, sel.Cards)
	}
	return nil, append([]Card(nil), src...)
}

// FromAll risolve la selezione su un mazzo completo non mescolato.
func FromAll(sel Selection, rng *rand.Rand) []Card {
	selected, _ := Resolve(FullDeck(), sel, rng)
	return selected
}

func (s Selection) matches(c Card) bool {
	return (len(s.Suits) == 0 || slices.Contains(s.Suits, c.Suit)) &&
		(len(s.Values) == 0 || slices.Contains(s.Values, c.Value))
}

func pickRandom(src []Card, n int, rng *rand.Rand) (selected, residual []Card) {
	if n == 0 {
		return nil, append([]Card(nil), src...)
	}
	perm := permutation(len(src), rng)
	chosen := make(map[int]bool, n)
	selected = make([]Card, 0, n)
	for _, idx := range perm[:n] {
		chosen[idx] = true
		selected = append(selected, src[idx])
	}
	residual = make([]Card, 0, len(src)-n)
	for i, c := range src {
		if !chosen[i] {
			residual = append(residual, c)
		}
	}
	return selected, residual
}

func pickExplicit(src []Card, list []Card) (selected, residual []Card) {
	present := make(map[Card]bool, len(src))
	for _, c := range src {
		present[c] = true
	}
	taken := make(map[Card]bool, len(list))
	for _, c := range list {
		if present[c] && !taken[c] {
			taken[c] = true
			selected = append(selected, c)
		}
	}
	for _, c := range src {
		if !taken[c] {
			residual = append(residual, c)
		}
	}
	return selected, residual
}

func partition(src []Card, keep func(Card) bool) (selected, residual []Card) {
	for _, c := range src {
		if keep(c) {
			selected = append(selected, c)
		} else {
			residual = append(residual, c)
		}
	}
	return selected, residual
}

func shuffle(cards []Card, rng *rand.Rand) {
	swap := func(i, j int) { cards[i], cards[j] = cards[j], cards[i] }
	if rng == nil {
		rand.Shuffle(len(cards), swap)
		return
	}
	rng.Shuffle(len(cards), swap)
}

func permutation(n int, rng *rand.Rand) []int {
	if rng == nil {
		return rand.Perm(n)
	}
	return rng.Perm(n)
}

func clamp(n, available int) int {
	if n < 0 {
		return 0
	}
	if n > available {
		return available
	}
	return n
}
