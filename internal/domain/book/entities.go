package book

import (
	"time"

	"library-circulation/internal/domain/apperr"
)

var (
	ErrNotFound    = apperr.NotFound("book not found")
	ErrUnavailable = apperr.Conflict("book is not available for borrowing")
)

// Table: books
type Book struct {
	ID              uint64    `gorm:"primaryKey;column:id" json:"-"`
	BookID          string    `gorm:"column:book_id;size:32;uniqueIndex:ux_books_book_id" json:"book_id"`
	Title           string    `gorm:"column:title;size:255;not null" json:"title"`
	Author          string    `gorm:"column:author;size:255" json:"author"`
	ISBN            string    `gorm:"column:isbn;size:20" json:"isbn"`
	LoanDays        int       `gorm:"column:loan_days;not null" json:"loan_days"`
	TotalCopies     int       `gorm:"column:total_copies;not null" json:"total_copies"`
	AvailableCopies int       `gorm:"column:available_copies;not null" json:"available_copies"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Book) TableName() string { return "books" }

func (b *Book) Available() bool { return b.AvailableCopies > 0 }

// LoanDuration falls back to def when the book has no configured duration.
func (b *Book) LoanDuration(def int) int {
	if b.LoanDays > 0 {
		return b.LoanDays
	}
	return def
}
