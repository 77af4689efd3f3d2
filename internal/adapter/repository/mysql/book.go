package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookDomain "library-circulation/internal/domain/book"
)

type BookRepository struct{ db *gorm.DB }

func NewBookRepository(db *gorm.DB) *BookRepository { return &BookRepository{db: db} }

func (r *BookRepository) Create(ctx context.Context, b *bookDomain.Book) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookRepository) GetByBookID(ctx context.Context, bookID string) (*bookDomain.Book, error) {
	return r.first(r.db.WithContext(ctx), bookID)
}

// GetByBookIDForUpdate serialises borrows of one title: the holding check
// and the copy decrement run under this lock.
func (r *BookRepository) GetByBookIDForUpdate(ctx context.Context, bookID string) (*bookDomain.Book, error) {
	return r.first(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), bookID)
}

func (r *BookRepository) first(q *gorm.DB, bookID string) (*bookDomain.Book, error) {
	var out bookDomain.Book
	if err := q.Where("book_id = ?", bookID).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bookDomain.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *BookRepository) List(ctx context.Context) ([]bookDomain.Book, error) {
	var out []bookDomain.Book
	res := r.db.WithContext(ctx).Order("title ASC, id ASC").Find(&out)
	return out, res.Error
}

// AdjustAvailable is a single conditional UPDATE so concurrent borrows of the
// last copy cannot both succeed.
func (r *BookRepository) AdjustAvailable(ctx context.Context, bookNumericID uint64, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&bookDomain.Book{}).
		Where("id = ? AND available_copies + ? >= 0 AND available_copies + ? <= total_copies", bookNumericID, delta, delta).
		Update("available_copies", gorm.Expr("available_copies + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return bookDomain.ErrUnavailable
	}
	return nil
}
