package mysql

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	bookDomain "library-circulation/internal/domain/book"
)

func TestBookRepository_AdjustAvailable(t *testing.T) {
	db := openTestDB(t)
	repo := NewBookRepository(db)
	ctx := context.Background()

	b := makeBook(2, 1)
	if err := repo.Create(ctx, b); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name    string
		delta   int
		want    int
		wantErr error
	}{
		{"borrow last copy", -1, 0, nil},
		{"borrow with none left", -1, 0, bookDomain.ErrUnavailable},
		{"return", 1, 1, nil},
		{"return second", 1, 2, nil},
		{"return beyond total", 1, 2, bookDomain.ErrUnavailable},
	}
	for _, tt := range tests {
		err := repo.AdjustAvailable(ctx, b.ID, tt.delta)
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.wantErr)
		}
		got, err := repo.GetByBookID(ctx, b.BookID)
		if err != nil {
			t.Fatal(err)
		}
		if got.AvailableCopies != tt.want {
			t.Fatalf("%s: available = %d, want %d", tt.name, got.AvailableCopies, tt.want)
		}
	}
}

func TestBookRepository_ListAndNotFound(t *testing.T) {
	repo := NewBookRepository(openTestDB(t))
	ctx := context.Background()

	first, second := makeBook(1, 1), makeBook(3, 3)
	first.Title, second.Title = "Zen and the Art", "A Pattern Language"
	for _, b := range []*bookDomain.Book{first, second} {
		if err := repo.Create(ctx, b); err != nil {
			t.Fatal(err)
		}
	}
	books, err := repo.List(ctx)
	if err != nil || len(books) != 2 {
		t.Fatalf("List = %d, %v", len(books), err)
	}
	if books[0].Title != "A Pattern Language" {
		t.Fatalf("expected title order, got %q first", books[0].Title)
	}
	if _, err := repo.GetByBookID(ctx, "missing"); !errors.Is(err, bookDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBookRepository_GetByBookIDForUpdate(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	b := makeBook(2, 2)
	if err := NewBookRepository(db).Create(ctx, b); err != nil {
		t.Fatal(err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		repo := NewBookRepository(tx)
		got, err := repo.GetByBookIDForUpdate(ctx, b.BookID)
		if err != nil {
			return err
		}
		if got.ID != b.ID || got.AvailableCopies != 2 {
			t.Fatalf("locked read = %+v", got)
		}
		if _, err := repo.GetByBookIDForUpdate(ctx, "missing"); !errors.Is(err, bookDomain.ErrNotFound) {
			t.Fatalf("missing: %v", err)
		}
		return repo.AdjustAvailable(ctx, got.ID, -1)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	got, _ := NewBookRepository(db).GetByBookID(ctx, b.BookID)
	if got.AvailableCopies != 1 {
		t.Fatalf("available = %d, want 1", got.AvailableCopies)
	}
}
