package mysql

import (
	"context"
	"errors"
	"testing"

	"library-circulation/internal/domain/actor"
	userDomain "library-circulation/internal/domain/user"
)

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	u := makeUser("ada", actor.RoleFaculty)
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	byName, err := repo.GetByUsername(ctx, "ada")
	if err != nil || byName.UserID != u.UserID || byName.Role != actor.RoleFaculty {
		t.Fatalf("GetByUsername = %+v, %v", byName, err)
	}
	byID, err := repo.GetByUserID(ctx, u.UserID)
	if err != nil || byID.Username != "ada" {
		t.Fatalf("GetByUserID = %+v, %v", byID, err)
	}

	if err := repo.Create(ctx, makeUser("ada", actor.RoleStudent)); !errors.Is(err, userDomain.ErrExists) {
		t.Fatalf("duplicate username: expected ErrExists, got %v", err)
	}
	if _, err := repo.GetByUsername(ctx, "grace"); !errors.Is(err, userDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
