package cards

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardCodeRoundTrip(t *testing.T) {
	for _, card := range FullDeck() {
		parsed, err := ParseCard(card.Code())
		require.NoError(t, err, card.Code())
		assert.Equal(t, card, parsed)
	}
}

func TestCardCodes(t *testing.T) {
	tests := []struct {
		code string
		card Card
	}{
		{"AS", Card{Suit: Spades, Value: Ace}},
		{"0H", Card{Suit: Hearts, Value: Ten}},
		{"KD", Card{Suit: Diamonds, Value: King}},
		{"2C", Card{Suit: Clubs, Value: Two}},
		{"jh", Card{Suit: Hearts, Value: Jack}},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			card, err := ParseCard(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.card, card)
		})
	}

	assert.Equal(t, "0H", Card{Suit: Hearts, Value: Ten}.Code())
}

func TestParseCardInvalid(t *testing.T) {
	for _, code := range []string{"", "A", "ASS", "XS", "AX", "10H", "  "} {
		_, err := ParseCard(code)
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", code)
	}
}

func TestFullDeckIsUniverse(t *testing.T) {
	deck := FullDeck()
	require.Len(t, deck, 52)

	seen := make(map[Card]bool)
	for _, card := range deck {
		assert.False(t, seen[card], "duplicate %s", card)
		seen[card] = true
	}

	// La copia non deve toccare la tabella condivisa.
	deck[0] = Card{Suit: Diamonds, Value: King}
	assert.Equal(t, Card{Suit: Hearts, Value: Ace}, FullDeck()[0])
}

func TestCardJSON(t *testing.T) {
	data, err := json.Marshal([]Card{{Suit: Spades, Value: Ace}, {Suit: Hearts, Value: Ten}})
	require.NoError(t, err)
	assert.JSONEq(t, `["AS","0H"]`, string(data))

	var decoded []Card
	require.NoError(t, json.Unmarshal([]byte(`["QC","9d"]`), &decoded))
	assert.Equal(t, []Card{{Suit: Clubs, Value: Queen}, {Suit: Diamonds, Value: Nine}}, decoded)

	err = json.Unmarshal([]byte(`["ZZ"]`), &decoded)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestParseSuitAndValue(t *testing.T) {
	suit, err := ParseSuit("s")
	require.NoError(t, err)
	assert.Equal(t, Spades, suit)

	value, err := ParseValue("0")
	require.NoError(t, err)
	assert.Equal(t, Ten, value)

	_, err = ParseSuit("HH")
	assert.ErrorIs(t, err, ErrInvalidCode)
	_, err = ParseValue("1")
	assert.ErrorIs(t, err, ErrInvalidCode)
}
