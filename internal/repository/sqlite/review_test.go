package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/letterplay/internal/apperror"
	"github.com/sakif/letterplay/internal/model"
)

func createTestReview(t *testing.T, db *DB, userID, gameID int64, nota int) *model.Review {
	t.Helper()
	r := &model.Review{Nota: nota, Comentario: "bom", UserID: userID, GameID: gameID}
	if err := db.CreateReview(context.Background(), r); err != nil {
		t.Fatalf("failed to create test review: %v", err)
	}
	return r
}

func TestCreateReview(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ana")
	game := createTestGame(t, db, "Zelda")

	r := createTestReview(t, db, user.ID, game.ID, 4)

	if r.ID == 0 {
		t.Error("CreateReview() did not set the review ID")
	}
	if r.CreatedAt.IsZero() {
		t.Error("CreateReview() did not set CreatedAt")
	}
}

func TestCreateReview_DuplicateIsConflict(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ana")
	game := createTestGame(t, db, "Zelda")
	createTestReview(t, db, user.ID, game.ID, 4)

	err := db.CreateReview(context.Background(), &model.Review{Nota: 2, UserID: user.ID, GameID: game.ID})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateReview() error = %v, want ErrConflict", err)
	}
}

func TestCreateReview_RejectsOutOfRangeNote(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ana")
	game := createTestGame(t, db, "Zelda")

	err := db.CreateReview(context.Background(), &model.Review{Nota: 9, UserID: user.ID, GameID: game.ID})
	if err == nil {
		t.Fatal("CreateReview() should fail the CHECK constraint for nota = 9")
	}
}

func TestGetReviewByUserAndGame(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ana")
	game := createTestGame(t, db, "Zelda")

	missing, err := db.GetReviewByUserAndGame(context.Background(), user.ID, game.ID)
	if err != nil {
		t.Fatalf("GetReviewByUserAndGame() error = %v", err)
	}
	if missing != nil {
		t.Fatalf("GetReviewByUserAndGame() = %+v, want nil before any review", missing)
	}

	created := createTestReview(t, db, user.ID, game.ID, 5)
	found, err := db.GetReviewByUserAndGame(context.Background(), user.ID, game.ID)
	if err != nil {
		t.Fatalf("GetReviewByUserAndGame() error = %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Errorf("GetReviewByUserAndGame() = %+v, want review %d", found, created.ID)
	}
}

func TestUpdateReview(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ana")
	game := createTestGame(t, db, "Zelda")
	r := createTestReview(t, db, user.ID, game.ID, 2)

	r.Nota = 5
	r.Comentario = "mudei de ideia"
	if err := db.UpdateReview(context.Background(), r); err != nil {
		t.Fatalf("UpdateReview() error = %v", err)
	}

	found, err := db.GetReviewByID(context.Background(), r.ID)
	if err != nil {
		t.Fatalf("GetReviewByID() error = %v", err)
	}
	if found.Nota != 5 || found.Comentario != "mudei de ideia" {
		t.Errorf("after update = %+v, want nota 5 and new comment", found)
	}
}

func TestUpdateReview_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateReview(context.Background(), &model.Review{ID: 404, Nota: 3})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateReview() error = %v, want ErrNotFound", err)
	}
}

func TestListReviewsByGame_IncludesUsernames(t *testing.T) {
	db := newTestDB(t)
	ana := createTestUser(t, db, "ana")
	bia := createTestUser(t, db, "bia")
	zelda := createTestGame(t, db, "Zelda")
	mario := createTestGame(t, db, "Mario")

	createTestReview(t, db, ana.ID, zelda.ID, 5)
	createTestReview(t, db, bia.ID, zelda.ID, 3)
	createTestReview(t, db, ana.ID, mario.ID, 1)

	reviews, err := db.ListReviewsByGame(context.Background(), zelda.ID)
	if err != nil {
		t.Fatalf("ListReviewsByGame() error = %v", err)
	}
	if len(reviews) != 2 {
		t.Fatalf("ListReviewsByGame() returned %d, want 2", len(reviews))
	}
	if reviews[0].Username != "ana" || reviews[1].Username != "bia" {
		t.Errorf("usernames = %q, %q; want ana, bia", reviews[0].Username, reviews[1].Username)
	}
}

func TestListReviewsByUser_IncludesTitles(t *testing.T) {
	db := newTestDB(t)
	ana := createTestUser(t, db, "ana")
	zelda := createTestGame(t, db, "Zelda")
	createTestReview(t, db, ana.ID, zelda.ID, 5)

	reviews, err := db.ListReviewsByUser(context.Background(), ana.ID)
	if err != nil {
		t.Fatalf("ListReviewsByUser() error = %v", err)
	}
	if len(reviews) != 1 || reviews[0].GameTitle != "Zelda" {
		t.Errorf("ListReviewsByUser() = %+v, want one review of Zelda", reviews)
	}
}

func TestDeleteReview(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ana")
	game := createTestGame(t, db, "Zelda")
	r := createTestReview(t, db, user.ID, game.ID, 4)

	if err := db.DeleteReview(context.Background(), r.ID); err != nil {
		t.Fatalf("DeleteReview() error = %v", err)
	}

	_, err := db.GetReviewByID(context.Background(), r.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetReviewByID() after delete: error = %v, want ErrNotFound", err)
	}

	if err := db.DeleteReview(context.Background(), r.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second DeleteReview() error = %v, want ErrNotFound", err)
	}
}

func TestTopRatedGames(t *testing.T) {
	db := newTestDB(t)
	ana := createTestUser(t, db, "ana")
	bia := createTestUser(t, db, "bia")
	zelda := createTestGame(t, db, "Zelda")
	mario := createTestGame(t, db, "Mario")
	createTestGame(t, db, "Unreviewed")

	createTestReview(t, db, ana.ID, zelda.ID, 5)
	createTestReview(t, db, bia.ID, zelda.ID, 4)
	createTestReview(t, db, ana.ID, mario.ID, 3)

	ranking, err := db.TopRatedGames(context.Background(), 10)
	if err != nil {
		t.Fatalf("TopRatedGames() error = %v", err)
	}
	if len(ranking) != 2 {
		t.Fatalf("TopRatedGames() returned %d rows, want 2 (unreviewed games excluded)", len(ranking))
	}
	if ranking[0].Titulo != "Zelda" || ranking[0].Media != 4.5 || ranking[0].TotalReviews != 2 {
		t.Errorf("first = %+v, want Zelda 4.5 (2 reviews)", ranking[0])
	}
	if ranking[0].Publicadora == nil || len(ranking[0].Generos) != 2 {
		t.Errorf("first row missing publisher or genres: %+v", ranking[0])
	}
	if ranking[1].Titulo != "Mario" || ranking[1].Media != 3 {
		t.Errorf("second = %+v, want Mario 3", ranking[1])
	}
}
