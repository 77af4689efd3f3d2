package book

import "context"

type Repository interface {
	Create(ctx context.Context, b *Book) error
	GetByBookID(ctx context.Context, bookID string) (*Book, error)
	// GetByBookIDForUpdate locks the book row until the transaction ends.
	GetByBookIDForUpdate(ctx context.Context, bookID string) (*Book, error)
	List(ctx context.Context) ([]Book, error)

	// AdjustAvailable adds delta to available_copies, keeping the value
	// within [0, total_copies]. Returns ErrUnavailable when the bound would
	// be crossed.
	AdjustAvailable(ctx context.Context, bookNumericID uint64, delta int) error
}
