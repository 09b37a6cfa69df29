package cards

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

func codes(list []Card) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Code()
	}
	return out
}

func mustCards(t *testing.T, list ...string) []Card {
	t.Helper()
	parsed, err := ParseCards(list)
	require.NoError(t, err)
	return parsed
}

func TestResolveTopAndBottom(t *testing.T) {
	src := mustCards(t, "AS", "2S", "3S", "4S", "5S")

	selected, residual := Resolve(src, Top(2), nil)
	assert.Equal(t, []string{"4S", "5S"}, codes(selected))
	assert.Equal(t, []string{"AS", "2S", "3S"}, codes(residual))

	selected, residual = Resolve(src, Bottom(2), nil)
	assert.Equal(t, []string{"AS", "2S"}, codes(selected))
	assert.Equal(t, []string{"3S", "4S", "5S"}, codes(residual))
}

func TestResolveClampsCounts(t *testing.T) {
	src := mustCards(t, "AS", "2S", "3S")

	for _, sel := range []Selection{Top(10), Bottom(10), Random(10)} {
		selected, residual := Resolve(src, sel, seeded())
		assert.Len(t, selected, 3, sel.String())
		assert.Empty(t, residual, sel.String())
	}

	selected, residual := Resolve(src, Top(-1), nil)
	assert.Empty(t, selected)
	assert.Len(t, residual, 3)
}

func TestResolveDoesNotMutateSource(t *testing.T) {
	src := FullDeck()
	Resolve(src, All(true), seeded())
	Resolve(src, Random(20), seeded())
	assert.Equal(t, FullDeck(), src)
}

func TestTopThenBottomExhaustsDeck(t *testing.T) {
	deck := FullDeck()

	top, rest := Resolve(deck, Top(20), nil)
	bottom, rest := Resolve(rest, Bottom(len(rest)), nil)

	assert.Empty(t, rest)
	assert.Len(t, append(top, bottom...), 52)
	for _, card := range top {
		assert.NotContains(t, bottom, card)
	}
}

func TestFilterHeartsOnly(t *testing.T) {
	selected := FromAll(Filter([]Suit{Hearts}, nil), nil)
	require.Len(t, selected, 13)
	for _, card := range selected {
		assert.Equal(t, Hearts, card.Suit)
	}
}

func TestFilterSuitsAndValues(t *testing.T) {
	selected := FromAll(Filter([]Suit{Spades, Clubs}, []Value{Ace, King}), nil)
	assert.ElementsMatch(t, []string{"AS", "KS", "AC", "KC"}, codes(selected))

	selected = FromAll(Filter(nil, []Value{Ten}), nil)
	assert.Len(t, selected, 4)
}

func TestFilterEmptyIsNoOp(t *testing.T) {
	selected, residual := Resolve(FullDeck(), Filter(nil, nil), nil)
	assert.Empty(t, selected)
	assert.Len(t, residual, 52)

	selected, residual = Resolve(FullDeck(), Empty(), nil)
	assert.Empty(t, selected)
	assert.Len(t, residual, 52)
}

func TestRandomFullDeckIsPermutation(t *testing.T) {
	selected, residual := Resolve(FullDeck(), Random(52), seeded())
	assert.Empty(t, residual)
	assert.ElementsMatch(t, FullDeck(), selected)
}

func TestRandomResidualIsComplement(t *testing.T) {
	deck := FullDeck()
	selected, residual := Resolve(deck, Random(10), seeded())
	require.Len(t, selected, 10)
	require.Len(t, residual, 42)
	assert.ElementsMatch(t, deck, append(append([]Card{}, selected...), residual...))

	// Il residuo mantiene l'ordine originale.
	last := -1
	for _, card := range residual {
		idx := int(card.Suit)*13 + int(card.Value)
		assert.Greater(t, idx, last)
		last = idx
	}
}

func TestAllShuffled(t *testing.T) {
	selected, residual := Resolve(FullDeck(), All(false), nil)
	assert.Equal(t, FullDeck(), selected)
	assert.Empty(t, residual)

	selected, _ = Resolve(FullDeck(), All(true), seeded())
	assert.ElementsMatch(t, FullDeck(), selected)
	assert.NotEqual(t, FullDeck(), selected)
}

func TestExplicitCards(t *testing.T) {
	src := mustCards(t, "AS", "2S", "3S")
	sel := Explicit(mustCards(t, "3S", "KH", "AS", "3S")...)

	selected, residual := Resolve(src, sel, nil)
	assert.Equal(t, []string{"3S", "AS"}, codes(selected))
	assert.Equal(t, []string{"2S"}, codes(residual))
}

func TestShortfall(t *testing.T) {
	assert.ErrorIs(t, Top(5).Shortfall(4), ErrNotEnoughCards)
	assert.ErrorIs(t, Random(53).Shortfall(52), ErrNotEnoughCards)
	assert.NoError(t, Bottom(4).Shortfall(4))
	assert.NoError(t, All(true).Shortfall(0))
	assert.NoError(t, Filter([]Suit{Hearts}, nil).Shortfall(0))
}

func TestDescriptorSelection(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Selection
	}{
		{"top", `{"top": 3}`, Top(3)},
		{"bottom", `{"bottom": 2}`, Bottom(2)},
		{"random", `{"random": 5}`, Random(5)},
		{"suits", `{"suits": ["H"]}`, Filter([]Suit{Hearts}, []Value{})},
		{"suits and values", `{"suits": ["S"], "values": ["A", "0"]}`, Filter([]Suit{Spades}, []Value{Ace, Ten})},
		{"cards", `{"cards": ["AS"]}`, Explicit(Card{Suit: Spades, Value: Ace})},
		{"all", `{"all": {"shuffled": true}}`, All(true)},
		{"empty", `{}`, Empty()},
		{"contradictory", `{"top": 1, "bottom": 1}`, Empty()},
		{"filter with count", `{"suits": ["H"], "random": 2}`, Empty()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Descriptor
			require.NoError(t, json.Unmarshal([]byte(tt.body), &d))
			sel, err := d.Selection()
			require.NoError(t, err)
			assert.Equal(t, tt.want, sel)
		})
	}
}

func TestDescriptorInvalidCodes(t *testing.T) {
	for _, body := range []string{`{"suits": ["X"]}`, `{"values": ["1"]}`, `{"cards": ["ZZ"]}`} {
		var d Descriptor
		require.NoError(t, json.Unmarshal([]byte(body), &d))
		_, err := d.Selection()
		assert.ErrorIs(t, err, ErrInvalidCode, body)
	}
}
