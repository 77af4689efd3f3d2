package book

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/apperr"
	"library-circulation/internal/domain/borrow"
	domain "library-circulation/internal/domain/book"
	"library-circulation/pkg/api"
	"library-circulation/pkg/id"
)

type CreateBookInput struct {
	Title    string
	Author   string
	ISBN     string
	LoanDays int
	Copies   int
}

type BookDTO = api.Book

func toDTO(b *domain.Book, defaultLoanDays int) BookDTO {
	return BookDTO{
		BookID:          b.BookID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		LoanDays:        b.LoanDuration(defaultLoanDays),
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Available:       b.Available(),
		CreatedAt:       b.CreatedAt,
	}
}

type Usecase struct {
	repo            domain.Repository
	defaultLoanDays int
	log             *zap.Logger
}

func NewUsecase(r domain.Repository, defaultLoanDays int, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: r, defaultLoanDays: defaultLoanDays, log: log.Named("book")}
}

func (u *Usecase) List(ctx context.Context) ([]BookDTO, error) {
	books, err := u.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	out := make([]BookDTO, 0, len(books))
	for i := range books {
		out = append(out, toDTO(&books[i], u.defaultLoanDays))
	}
	return out, nil
}

func (u *Usecase) Get(ctx context.Context, bookID string) (*BookDTO, error) {
	b, err := u.repo.GetByBookID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	dto := toDTO(b, u.defaultLoanDays)
	return &dto, nil
}

// Create adds a title to the catalogue with every copy available.
func (u *Usecase) Create(ctx context.Context, a actor.Actor, in CreateBookInput) (*BookDTO, error) {
	if !a.IsStaff() {
		return nil, borrow.ErrStaffOnly
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperr.Validation("title is required")
	}
	if in.Copies < 1 {
		return nil, apperr.Validation("copies must be at least 1")
	}
	if in.LoanDays < 0 {
		return nil, apperr.Validation("loan_days cannot be negative")
	}
	b := &domain.Book{
		BookID:          id.NewID32(),
		Title:           title,
		Author:          strings.TrimSpace(in.Author),
		ISBN:            strings.TrimSpace(in.ISBN),
		LoanDays:        in.LoanDays,
		TotalCopies:     in.Copies,
		AvailableCopies: in.Copies,
	}
	if err := u.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	u.log.Info("book created", zap.String("book_id", b.BookID), zap.String("actor_id", a.UserID), zap.Int("copies", b.TotalCopies))
	dto := toDTO(b, u.defaultLoanDays)
	return &dto, nil
}
