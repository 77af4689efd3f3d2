package uow

import (
	"context"

	"library-circulation/internal/domain/book"
	"library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/user"
)

// Repos are bound to one transaction.
type Repos struct {
	Borrows borrow.Repository
	Books   book.Repository
	Fines   fine.Repository
	Users   user.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the borrow record first, then pass it in
	WithinBorrowTx(ctx context.Context, recordID string, fn func(r Repos, rec *borrow.BorrowRecord) error) error
	// lock the fine first, then pass it in
	WithinFineTx(ctx context.Context, fineID string, fn func(r Repos, f *fine.Fine) error) error
}
