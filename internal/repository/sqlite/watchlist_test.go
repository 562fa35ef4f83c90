package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/letterplay/internal/model"
)

func TestSetFavorite_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ana")
	game := createTestGame(t, db, "Zelda")

	if err := db.SetFavorite(ctx, user.ID, game.ID, true); err != nil {
		t.Fatalf("SetFavorite(true) error = %v", err)
	}
	entry, err := db.GetEntry(ctx, user.ID, game.ID)
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if entry == nil || !entry.Favorite {
		t.Fatalf("entry = %+v, want favorite", entry)
	}
	if entry.Status != model.StatusNotPlayed {
		t.Errorf("Status = %q, want default %q", entry.Status, model.StatusNotPlayed)
	}

	if err := db.SetFavorite(ctx, user.ID, game.ID, false); err != nil {
		t.Fatalf("SetFavorite(false) error = %v", err)
	}
	entry, _ = db.GetEntry(ctx, user.ID, game.ID)
	if entry.Favorite {
		t.Error("entry still favorite after SetFavorite(false)")
	}
}

func TestSetStatus_KeepsFavorite(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ana")
	game := createTestGame(t, db, "Zelda")

	if err := db.SetFavorite(ctx, user.ID, game.ID, true); err != nil {
		t.Fatalf("SetFavorite() error = %v", err)
	}
	if err := db.SetStatus(ctx, user.ID, game.ID, model.StatusPlayed); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}

	entry, _ := db.GetEntry(ctx, user.ID, game.ID)
	if entry.Status != model.StatusPlayed || !entry.Favorite {
		t.Errorf("entry = %+v, want JOGADO and still favorite", entry)
	}
}

func TestGetEntry_Missing(t *testing.T) {
	db := newTestDB(t)

	entry, err := db.GetEntry(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}
	if entry != nil {
		t.Errorf("GetEntry() = %+v, want nil", entry)
	}
}

func TestListFavorites(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "ana")
	zelda := createTestGame(t, db, "Zelda")
	mario := createTestGame(t, db, "Mario")

	db.SetFavorite(ctx, user.ID, zelda.ID, true)
	db.SetStatus(ctx, user.ID, mario.ID, model.StatusPlaying)

	favorites, err := db.ListFavorites(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListFavorites() error = %v", err)
	}
	if len(favorites) != 1 || favorites[0].Titulo != "Zelda" || !favorites[0].IsFavorite {
		t.Errorf("ListFavorites() = %+v, want only Zelda marked favorite", favorites)
	}
}
