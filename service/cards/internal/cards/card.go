package cards

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCode indica un codice carta, seme o valore non riconosciuto.
var ErrInvalidCode = errors.New("invalid card code")

// Suit e' il seme di una carta.
type Suit uint8

const (
	Hearts Suit = iota
	Clubs
	Spades
	Diamonds
)

// Value e' il valore (rank) di una carta.
type Value uint8

const (
	Ace Value = iota
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

const (
	suitCodes  = "HCSD"
	valueCodes = "A234567890JQK"
)

var suitNames = [...]string{"Hearts", "Clubs", "Spades", "Diamonds"}

var valueNames = [...]string{
	"Ace", "Two", "Three", "Four", "Five", "Six", "Seven",
	"Eight", "Nine", "Ten", "Jack", "Queen", "King",
}

// Code ritorna il codice di una lettera del seme.
func (s Suit) Code() string {
	if int(s) >= len(suitCodes) {
		return "?"
	}
	return suitCodes[s : s+1]
}

func (s Suit) String() string {
	if int(s) >= len(suitNames) {
		return fmt.Sprintf("Suit(%d)", uint8(s))
	}
	return suitNames[s]
}

// ParseSuit legge il codice di un seme (H, C, S, D).
func ParseSuit(code string) (Suit, error) {
	if len(code) != 1 {
		return 0, fmt.Errorf("%w: suit %q", ErrInvalidCode, code)
	}
	idx := strings.IndexByte(suitCodes, upper(code[0]))
	if idx < 0 {
		return 0, fmt.Errorf("%w: suit %q", ErrInvalidCode, code)
	}
	return Suit(idx), nil
}

// Code ritorna il codice di una lettera del valore. Il dieci si codifica "0".
func (v Value) Code() string {
	if int(v) >= len(valueCodes) {
		return "?"
	}
	return valueCodes[v : v+1]
}

func (v Value) String() string {
	if int(v) >= len(valueNames) {
		return fmt.Sprintf("Value(%d)", uint8(v))
	}
	return valueNames[v]
}

// ParseValue legge il codice di un valore (A, 2..9, 0, J, Q, K).
func ParseValue(code string) (Value, error) {
	if len(code) != 1 {
		return 0, fmt.Errorf("%w: value %q", ErrInvalidCode, code)
	}
	idx := strings.IndexByte(valueCodes, upper(code[0]))
	if idx < 0 {
		return 0, fmt.Errorf("%w: value %q", ErrInvalidCode, code)
	}
	return Value(idx), nil
}

// Card identifica una carta per seme e valore. E' un valore immutabile.
type Card struct {
	Suit  Suit
	Value Value
}

// Code ritorna il codice a due caratteri: valore + seme (es. "AS", "0H").
func (c Card) Code() string {
	return c.Value.Code() + c.Suit.Code()
}

func (c Card) String() string {
	return c.Code()
}

// ParseCard legge un codice a due caratteri. Il parsing ignora maiuscole/minuscole.
func ParseCard(code string) (Card, error) {
	if len(code) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	value, err := ParseValue(code[:1])
	if err != nil {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	suit, err := ParseSuit(code[1:])
	if err != nil {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCode, code)
	}
	return Card{Suit: suit, Value: value}, nil
}

// ParseCards legge una lista di codici, fermandosi al primo non valido.
func ParseCards(codes []string) ([]Card, error) {
	result := make([]Card, 0, len(codes))
	for _, code := range codes {
		card, err := ParseCard(strings.TrimSpace(code))
		if err != nil {
			return nil, err
		}
		result = append(result, card)
	}
	return result, nil
}

// MarshalText serializza la carta come codice (usato anche da encoding/json).
func (c Card) MarshalText() ([]byte, error) {
	return []byte(c.Code()), nil
}

// UnmarshalText legge la carta dal suo codice.
func (c *Card) UnmarshalText(text []byte) error {
	parsed, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// universe e' la tabella fissa delle 52 carte: semi H, C, S, D per valori A..K.
var universe = func() [52]Card {
	var all [52]Card
	i := 0
	for s := Hearts; s <= Diamonds; s++ {
		for v := Ace; v <= King; v++ {
			all[i] = Card{Suit: s, Value: v}
			i++
		}
	}
	return all
}()

// FullDeck ritorna una copia ordinata delle 52 carte.
func FullDeck() []Card {
	deck := make([]Card, len(universe))
	copy(deck, universe[:])
	return deck
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}
