package cards

// Descriptor e' la forma JSON di una selezione nelle request.
// Al massimo una forma puo' essere presente (suits e values insieme formano un solo Filter);
// nessuna forma o combinazioni contraddittorie risolvono a Empty.
type Descriptor struct {
	Suits  []string    `json:"suits,omitempty"`
	Values []string    `json:"values,omitempty"`
	Random *int        `json:"random,omitempty"`
	Top    *int        `json:"top,omitempty"`
	Bottom *int        `json:"bottom,omitempty"`
	Cards  []string    `json:"cards,omitempty"`
	All    *AllOptions `json:"all,omitempty"`
}

// AllOptions configura la selezione di tutte le carte.
type AllOptions struct {
	Shuffled bool `json:"shuffled"`
}

// Selection converte il descriptor. Fallisce solo per codici non validi.
func (d Descriptor) Selection() (Selection, error) {
	filter := d.Suits != nil || d.Values != nil
	shapes := 0
	for _, present := range []bool{filter, d.Random != nil, d.Top != nil, d.Bottom != nil, d.Cards != nil, d.All != nil} {
		if present {
			shapes++
		}
	}
	if shapes != 1 {
		return Empty(), nil
	}

	switch {
	case filter:
		suits := make([]Suit, 0, len(d.Suits))
		for _, code := range d.Suits {
			suit, err := ParseSuit(code)
			if err != nil {
				return Selection{}, err
			}
			suits = append(suits, suit)
		}
		values := make([]Value, 0, len(d.Values))
		for _, code := range d.Values {
			value, err := ParseValue(code)
			if err != nil {
				return Selection{}, err
			}
			values = append(values, value)
		}
		return Filter(suits, values), nil
	case d.Random != nil:
		return Random(*d.Random), nil
	case d.Top != nil:
		return Top(*d.Top), nil
	case d.Bottom != nil:
		return Bottom(*d.Bottom), nil
	case d.Cards != nil:
		list, err := ParseCards(d.Cards)
		if err != nil {
			return Selection{}, err
		}
		return Explicit(list...), nil
	default:
		return All(d.All.Shuffled), nil
	}
}
