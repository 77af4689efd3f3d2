package borrow

import "context"

type Repository interface {
	Create(ctx context.Context, r *BorrowRecord) error
	GetByRecordID(ctx context.Context, recordID string) (*BorrowRecord, error)
	// GetByRecordIDForUpdate locks the row for the rest of the transaction.
	GetByRecordIDForUpdate(ctx context.Context, recordID string) (*BorrowRecord, error)
	ListAll(ctx context.Context) ([]BorrowRecord, error)
	ListByUserID(ctx context.Context, userID string) ([]BorrowRecord, error)
	ListActive(ctx context.Context) ([]BorrowRecord, error)
	HasActiveLoan(ctx context.Context, userID, bookID string) (bool, error)

	// SaveIfUnchanged persists r only when the stored row still matches
	// prev, returning ErrStaleTransition otherwise.
	SaveIfUnchanged(ctx context.Context, r *BorrowRecord, prev Snapshot) error
}
