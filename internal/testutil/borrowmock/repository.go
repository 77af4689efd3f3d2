package borrowmock

import (
	"context"

	domain "library-circulation/internal/domain/borrow"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error; reads default to context.Canceled.
type Repo struct {
	CreateFn                 func(ctx context.Context, r *domain.BorrowRecord) error
	GetByRecordIDFn          func(ctx context.Context, recordID string) (*domain.BorrowRecord, error)
	GetByRecordIDForUpdateFn func(ctx context.Context, recordID string) (*domain.BorrowRecord, error)
	ListAllFn                func(ctx context.Context) ([]domain.BorrowRecord, error)
	ListByUserIDFn           func(ctx context.Context, userID string) ([]domain.BorrowRecord, error)
	ListActiveFn             func(ctx context.Context) ([]domain.BorrowRecord, error)
	HasActiveLoanFn          func(ctx context.Context, userID, bookID string) (bool, error)
	SaveIfUnchangedFn        func(ctx context.Context, r *domain.BorrowRecord, prev domain.Snapshot) error
}

func (m *Repo) Create(ctx context.Context, r *domain.BorrowRecord) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByRecordID(ctx context.Context, recordID string) (*domain.BorrowRecord, error) {
	if m.GetByRecordIDFn != nil {
		return m.GetByRecordIDFn(ctx, recordID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByRecordIDForUpdate(ctx context.Context, recordID string) (*domain.BorrowRecord, error) {
	if m.GetByRecordIDForUpdateFn != nil {
		return m.GetByRecordIDForUpdateFn(ctx, recordID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListAll(ctx context.Context) ([]domain.BorrowRecord, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.BorrowRecord, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListActive(ctx context.Context) ([]domain.BorrowRecord, error) {
	if m.ListActiveFn != nil {
		return m.ListActiveFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) HasActiveLoan(ctx context.Context, userID, bookID string) (bool, error) {
	if m.HasActiveLoanFn != nil {
		return m.HasActiveLoanFn(ctx, userID, bookID)
	}
	return false, context.Canceled
}

func (m *Repo) SaveIfUnchanged(ctx context.Context, r *domain.BorrowRecord, prev domain.Snapshot) error {
	if m.SaveIfUnchangedFn != nil {
		return m.SaveIfUnchangedFn(ctx, r, prev)
	}
	return nil
}
