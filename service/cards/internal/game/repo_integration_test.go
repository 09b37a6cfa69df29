package game

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"CardTable/service/cards/internal/cards"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("CARDS_TEST_DSN")
	if dsn == "" {
		t.Skip("CARDS_TEST_DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// Test d'integrazione: salva una partita con una pila e la rilegge dal DB.
func TestRepoSaveAndLoad(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewRepo(db)

	g := New(uuid.NewString(), time.Now().UTC().Truncate(time.Microsecond), testRand())
	t.Cleanup(func() {
		_, _ = db.ExecContext(ctx, `DELETE FROM games WHERE id = $1`, g.ID)
	})

	if _, err := g.NewPile("discard"); err != nil {
		t.Fatalf("NewPile: %v", err)
	}
	if _, err := g.Draw(DeckRef(), PileRef("discard"), cards.Top(5), Clamp, nil); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if err := repo.Save(ctx, g); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if g.Version != 1 {
		t.Fatalf("expected version 1, got %d", g.Version)
	}

	loaded, err := repo.Load(ctx, g.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Version != 1 || loaded.Deck.Len() != 47 || loaded.Piles["discard"].Len() != 5 {
		t.Fatalf("unexpected game data: v%d deck=%d", loaded.Version, loaded.Deck.Len())
	}
	assertUniverse(t, loaded)

	// Una seconda save sulla versione letta passa, una copia vecchia no.
	stale, err := repo.Load(ctx, g.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := repo.Save(ctx, loaded); err != nil {
		t.Fatalf("Save loaded: %v", err)
	}
	if err := repo.Save(ctx, stale); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	id, err := repo.LatestGameID(ctx)
	if err != nil || id == "" {
		t.Fatalf("LatestGameID: %q %v", id, err)
	}
}

// Test d'integrazione: partita inesistente.
func TestRepoLoadNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := NewRepo(db).Load(context.Background(), uuid.NewString())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
