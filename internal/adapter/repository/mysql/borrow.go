package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	borrowDomain "library-circulation/internal/domain/borrow"
)

type BorrowRepository struct{ db *gorm.DB }

func NewBorrowRepository(db *gorm.DB) *BorrowRepository { return &BorrowRepository{db: db} }

func (r *BorrowRepository) Create(ctx context.Context, rec *borrowDomain.BorrowRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *BorrowRepository) GetByRecordID(ctx context.Context, recordID string) (*borrowDomain.BorrowRecord, error) {
	return r.first(r.db.WithContext(ctx), recordID)
}

// GetByRecordIDForUpdate takes a row lock (SELECT ... FOR UPDATE on MySQL;
// SQLite serialises writers instead).
func (r *BorrowRepository) GetByRecordIDForUpdate(ctx context.Context, recordID string) (*borrowDomain.BorrowRecord, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), recordID)
}

func (r *BorrowRepository) first(q *gorm.DB, recordID string) (*borrowDomain.BorrowRecord, error) {
	var out borrowDomain.BorrowRecord
	if err := q.Where("record_id = ?", recordID).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrowDomain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *BorrowRepository) ListAll(ctx context.Context) ([]borrowDomain.BorrowRecord, error) {
	var out []borrowDomain.BorrowRecord
	res := r.db.WithContext(ctx).Order("borrow_date DESC, id DESC").Find(&out)
	return out, res.Error
}

func (r *BorrowRepository) ListByUserID(ctx context.Context, userID string) ([]borrowDomain.BorrowRecord, error) {
	var out []borrowDomain.BorrowRecord
	res := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("borrow_date DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *BorrowRepository) ListActive(ctx context.Context) ([]borrowDomain.BorrowRecord, error) {
	var out []borrowDomain.BorrowRecord
	res := r.db.WithContext(ctx).
		Where("status <> ?", borrowDomain.StatusReturned).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}

func (r *BorrowRepository) HasActiveLoan(ctx context.Context, userID, bookID string) (bool, error) {
	var n int64
	res := r.db.WithContext(ctx).
		Model(&borrowDomain.BorrowRecord{}).
		Where("user_id = ? AND book_id = ? AND status <> ?", userID, bookID, borrowDomain.StatusReturned).
		Count(&n)
	return n > 0, res.Error
}

// SaveIfUnchanged writes every column of rec, guarded by the status pair in
// prev. Zero rows affected means another writer got there first.
func (r *BorrowRepository) SaveIfUnchanged(ctx context.Context, rec *borrowDomain.BorrowRecord, prev borrowDomain.Snapshot) error {
	res := r.db.WithContext(ctx).
		Model(rec).
		Where("status = ? AND extension_request_status = ?", prev.Status, prev.ExtensionRequestStatus).
		Select("*").
		Omit("id", "created_at").
		Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return borrowDomain.ErrStaleTransition
	}
	return nil
}
