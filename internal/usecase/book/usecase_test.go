package book

import (
	"context"
	"errors"
	"testing"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/apperr"
	domain "library-circulation/internal/domain/book"
	"library-circulation/internal/testutil/bookmock"
)

func TestCreate(t *testing.T) {
	ctx := context.Background()
	var created *domain.Book
	uc := NewUsecase(&bookmock.Repo{
		CreateFn: func(_ context.Context, b *domain.Book) error {
			created = b
			return nil
		},
	}, 14, nil)

	staff := actor.Actor{UserID: "lib", Role: actor.RoleLibrarian}
	dto, err := uc.Create(ctx, staff, CreateBookInput{Title: " Dune ", Author: "Herbert", Copies: 3})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if dto.Title != "Dune" || dto.AvailableCopies != 3 || !dto.Available || dto.LoanDays != 14 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if created == nil || created.LoanDays != 0 {
		t.Fatalf("stored book should keep loan_days unset: %+v", created)
	}

	tests := []struct {
		name    string
		who     actor.Actor
		in      CreateBookInput
		wantErr error
	}{
		{"patron", actor.Actor{UserID: "s", Role: actor.RoleStudent}, CreateBookInput{Title: "x", Copies: 1}, apperr.ErrAuthorization},
		{"no title", staff, CreateBookInput{Copies: 1}, apperr.ErrValidation},
		{"no copies", staff, CreateBookInput{Title: "x"}, apperr.ErrValidation},
		{"negative loan", staff, CreateBookInput{Title: "x", Copies: 1, LoanDays: -1}, apperr.ErrValidation},
	}
	for _, tt := range tests {
		if _, err := uc.Create(ctx, tt.who, tt.in); !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: want %v, got %v", tt.name, tt.wantErr, err)
		}
	}
}

func TestListAndGet(t *testing.T) {
	ctx := context.Background()
	uc := NewUsecase(&bookmock.Repo{
		ListFn: func(context.Context) ([]domain.Book, error) {
			return []domain.Book{
				{BookID: "a", Title: "A", LoanDays: 7, TotalCopies: 1, AvailableCopies: 0},
				{BookID: "b", Title: "B", TotalCopies: 2, AvailableCopies: 2},
			}, nil
		},
		GetByBookIDFn: func(_ context.Context, bookID string) (*domain.Book, error) {
			return nil, domain.ErrNotFound
		},
	}, 21, nil)

	books, err := uc.List(ctx)
	if err != nil || len(books) != 2 {
		t.Fatalf("List = %d, %v", len(books), err)
	}
	if books[0].Available || books[0].LoanDays != 7 || !books[1].Available || books[1].LoanDays != 21 {
		t.Fatalf("unexpected list: %+v", books)
	}
	if _, err := uc.Get(ctx, "zzz"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("Get missing: %v", err)
	}
}
