package game

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"

	"CardTable/service/cards/internal/cards"
	"CardTable/service/cards/internal/lock"
	"github.com/coder/quartz"
	"github.com/google/uuid"
)

// Service applica la logica di dominio usando repository e lock per partita.
// Ogni mutazione segue lo schema lock -> load -> modifica -> save -> unlock.
type Service struct {
	logger *slog.Logger
	repo   Repository
	locker lock.Manager
	policy DrawPolicy
	clock  quartz.Clock
	newID  func() string

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option personalizza il Service (usato soprattutto nei test).
type Option func(*Service)

// WithClock sostituisce l'orologio reale.
func WithClock(clock quartz.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithRand fissa la sorgente casuale per mescolate e selezioni random.
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithIDGenerator sostituisce la generazione degli ID partita.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) { s.newID = newID }
}

// NewService crea il servizio di dominio per le partite.
func NewService(logger *slog.Logger, repo Repository, locker lock.Manager, policy DrawPolicy, opts ...Option) *Service {
	s := &Service{
		logger: logger,
		repo:   repo,
		locker: locker,
		policy: policy,
		clock:  quartz.NewReal(),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGame crea e salva una partita con mazzo mescolato.
func (s *Service) CreateGame(ctx context.Context) (*Game, error) {
	var g *Game
	s.withRand(func(rng *rand.Rand) {
		g = New(s.newID(), s.clock.Now(), rng)
	})
	if err := s.repo.Save(ctx, g); err != nil {
		s.logger.Error("errore salvataggio nuova partita", "error", err, "game_id", g.ID)
		return nil, err
	}
	s.logger.Info("partita creata", "game_id", g.ID)
	return g, nil
}

// GetGame carica la partita per ID.
func (s *Service) GetGame(ctx context.Context, id string) (*Game, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("game %q: %w", id, ErrNotFound)
	}
	g, err := s.repo.Load(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("game %q: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return g, nil
}

// GetDeck ritorna il mazzo della partita.
func (s *Service) GetDeck(ctx context.Context, id string) (*cards.Collection, error) {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.Deck, nil
}

// GetPile ritorna una pila esistente. Il nome "deck" ritorna il mazzo.
func (s *Service) GetPile(ctx context.Context, id, name string) (*cards.Collection, error) {
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	return g.Collection(ParseRef(name))
}

// CreatePile aggiunge una pila vuota e salva la partita.
func (s *Service) CreatePile(ctx context.Context, id, name string) (*Game, error) {
	g, err := s.mutate(ctx, id, func(g *Game) error {
		_, err := g.NewPile(name)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("pila creata", "game_id", id, "pile", name)
	return g, nil
}

// Draw sposta le carte selezionate fra due collezioni della stessa partita.
func (s *Service) Draw(ctx context.Context, id string, from, to CollectionRef, sel cards.Selection) (*Game, []cards.Card, error) {
	var moved []cards.Card
	g, err := s.mutate(ctx, id, func(g *Game) error {
		var drawErr error
		s.withRand(func(rng *rand.Rand) {
			moved, drawErr = g.Draw(from, to, sel, s.policy, rng)
		})
		return drawErr
	})
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("carte spostate", "game_id", id, "from", from.String(), "to", to.String(),
		"selection", sel.String(), "moved", len(moved))
	return g, moved, nil
}

// mutate serializza le modifiche sulla stessa partita tramite il lock.
func (s *Service) mutate(ctx context.Context, id string, apply func(*Game) error) (*Game, error) {
	if s.locker == nil {
		return nil, errors.New("game lock not configured")
	}

	// 1) Acquisisce il lock per serializzare le scritture sulla partita.
	lockKey := "lock:game:" + id
	token, ok, err := s.locker.Acquire(ctx, lockKey)
	if err != nil {
		s.logger.Error("errore acquisizione lock", "error", err, "game_id", id)
		return nil, fmt.Errorf("acquire game lock: %w", err)
	}
	if !ok {
		return nil, ErrGameBusy
	}
	defer func() {
		if err := s.locker.Release(context.Background(), lockKey, token); err != nil {
			s.logger.Warn("errore rilascio lock", "error", err, "game_id", id)
		}
	}()

	// 2) Carica lo stato completo.
	g, err := s.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	// 3) Applica la modifica in memoria; in caso di errore non si salva nulla.
	if err := apply(g); err != nil {
		return nil, err
	}
	g.UpdatedAt = s.clock.Now()

	// 4) Salva con controllo di versione.
	if err := s.repo.Save(ctx, g); err != nil {
		if !errors.Is(err, ErrVersionConflict) {
			s.logger.Error("errore salvataggio partita", "error", err, "game_id", id)
		}
		return nil, err
	}
	return g, nil
}

func (s *Service) withRand(fn func(*rand.Rand)) {
	if s.rng == nil {
		fn(nil)
		return
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	fn(s.rng)
}
