package bookmock

import (
	"context"

	domain "library-circulation/internal/domain/book"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn               func(ctx context.Context, b *domain.Book) error
	GetByBookIDFn          func(ctx context.Context, bookID string) (*domain.Book, error)
	GetByBookIDForUpdateFn func(ctx context.Context, bookID string) (*domain.Book, error)
	ListFn                 func(ctx context.Context) ([]domain.Book, error)
	AdjustAvailableFn      func(ctx context.Context, bookNumericID uint64, delta int) error
}

func (m *Repo) Create(ctx context.Context, b *domain.Book) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, b)
	}
	return nil
}

func (m *Repo) GetByBookID(ctx context.Context, bookID string) (*domain.Book, error) {
	if m.GetByBookIDFn != nil {
		return m.GetByBookIDFn(ctx, bookID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByBookIDForUpdate(ctx context.Context, bookID string) (*domain.Book, error) {
	if m.GetByBookIDForUpdateFn != nil {
		return m.GetByBookIDForUpdateFn(ctx, bookID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]domain.Book, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) AdjustAvailable(ctx context.Context, bookNumericID uint64, delta int) error {
	if m.AdjustAvailableFn != nil {
		return m.AdjustAvailableFn(ctx, bookNumericID, delta)
	}
	return nil
}
