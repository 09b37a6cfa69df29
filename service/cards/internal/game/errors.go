package game

import (
	"errors"

	"CardTable/service/cards/internal/cards"
)

// Errori di dominio usati da service/repo e mappati nei layer HTTP e gRPC.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists indica una pila gia' presente con lo stesso nome.
var ErrAlreadyExists = errors.New("already exists")

// ErrInvalidPileName indica un nome vuoto o riservato.
var ErrInvalidPileName = errors.New("invalid pile name")

// ErrVersionConflict indica un salvataggio su una versione non piu' attuale.
var ErrVersionConflict = errors.New("game version conflict")

// ErrGameBusy indica che il lock della partita e' in mano a un'altra richiesta.
var ErrGameBusy = errors.New("game is busy")

// ErrNotEnoughCards e' riesportato per i chiamanti che non importano cards.
var ErrNotEnoughCards = cards.ErrNotEnoughCards
