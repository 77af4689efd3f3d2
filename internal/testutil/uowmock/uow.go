package uowmock

import (
	"context"
	"errors"

	"library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn       func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinBorrowTxFn func(ctx context.Context, recordID string, fn func(r uow.Repos, rec *borrow.BorrowRecord) error) error
	WithinFineTxFn   func(ctx context.Context, fineID string, fn func(r uow.Repos, f *fine.Fine) error) error
}

// Passthrough builds a UoW that runs every callback against repos, locking
// through the repos' ForUpdate getters the way the gorm implementation does.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(_ context.Context, fn func(uow.Repos) error) error {
			return fn(repos)
		},
		WithinBorrowTxFn: func(ctx context.Context, recordID string, fn func(uow.Repos, *borrow.BorrowRecord) error) error {
			rec, err := repos.Borrows.GetByRecordIDForUpdate(ctx, recordID)
			if err != nil {
				return err
			}
			return fn(repos, rec)
		},
		WithinFineTxFn: func(ctx context.Context, fineID string, fn func(uow.Repos, *fine.Fine) error) error {
			f, err := repos.Fines.GetByFineIDForUpdate(ctx, fineID)
			if err != nil {
				return err
			}
			return fn(repos, f)
		},
	}
}

func (m *UoW) Reset() { *m = UoW{} }

// Methods implementing UnitOfWork
func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinBorrowTx(ctx context.Context, recordID string, fn func(r uow.Repos, rec *borrow.BorrowRecord) error) error {
	if m.WithinBorrowTxFn != nil {
		return m.WithinBorrowTxFn(ctx, recordID, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinFineTx(ctx context.Context, fineID string, fn func(r uow.Repos, f *fine.Fine) error) error {
	if m.WithinFineTxFn != nil {
		return m.WithinFineTxFn(ctx, fineID, fn)
	}
	return errUnimplemented
}
