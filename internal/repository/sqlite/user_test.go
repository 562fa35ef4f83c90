package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/letterplay/internal/apperror"
	"github.com/sakif/letterplay/internal/model"
)

func TestCreateUser(t *testing.T) {
	db := newTestDB(t)

	user := createTestUser(t, db, "ana")

	if user.ID == 0 {
		t.Error("CreateUser() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("CreateUser() did not set CreatedAt")
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "ana")

	err := db.CreateUser(context.Background(), &model.User{Username: "ANA"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("CreateUser() error = %v, want ErrConflict (usernames are case-insensitive)", err)
	}
}

func TestGetUserByUsername(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "ana")

	found, err := db.GetUserByUsername(context.Background(), "Ana")
	if err != nil {
		t.Fatalf("GetUserByUsername() error = %v", err)
	}
	if found.ID != created.ID || found.PasswordHash != "hash" {
		t.Errorf("GetUserByUsername() = %+v, want user %d with hash", found, created.ID)
	}

	_, err = db.GetUserByUsername(context.Background(), "nobody")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByUsername(nobody) error = %v, want ErrNotFound", err)
	}
}

func TestGetUserByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetUserByID(context.Background(), 77)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
}

func TestUpsertGitHubUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ghID := int64(583231)

	first := &model.User{Username: "octocat", GitHubID: &ghID}
	if err := db.UpsertGitHubUser(ctx, first); err != nil {
		t.Fatalf("first UpsertGitHubUser() error = %v", err)
	}

	second := &model.User{Username: "octocat-renamed", GitHubID: &ghID}
	if err := db.UpsertGitHubUser(ctx, second); err != nil {
		t.Fatalf("second UpsertGitHubUser() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("upsert created a new row: IDs %d and %d", first.ID, second.ID)
	}
	if second.Username != "octocat" {
		t.Errorf("Username = %q, want the original %q", second.Username, "octocat")
	}
}

func TestUpsertGitHubUser_UsernameTaken(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "octocat")
	ghID := int64(583231)

	user := &model.User{Username: "octocat", GitHubID: &ghID}
	if err := db.UpsertGitHubUser(context.Background(), user); err != nil {
		t.Fatalf("UpsertGitHubUser() error = %v", err)
	}
	if user.Username != "octocat-583231" {
		t.Errorf("Username = %q, want %q", user.Username, "octocat-583231")
	}
}

func TestListUsers(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "ana")
	createTestUser(t, db, "bia")

	users, err := db.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 || users[0].Username != "ana" || users[1].Username != "bia" {
		t.Errorf("ListUsers() = %+v, want ana, bia", users)
	}
}
