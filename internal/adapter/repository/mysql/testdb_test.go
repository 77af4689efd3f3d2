package mysql

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"library-circulation/internal/domain/actor"
	bookDomain "library-circulation/internal/domain/book"
	borrowDomain "library-circulation/internal/domain/borrow"
	fineDomain "library-circulation/internal/domain/fine"
	userDomain "library-circulation/internal/domain/user"
	"library-circulation/pkg/id"
)

// openTestDB creates an in-memory sqlite DB with the domain schema. A single
// connection keeps every query on the same in-memory database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&userDomain.User{},
		&bookDomain.Book{},
		&borrowDomain.BorrowRecord{},
		&fineDomain.Fine{},
		&fineDomain.Proof{},
	); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func date(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }

func makeRecord(userID, bookID string, st borrowDomain.Status) *borrowDomain.BorrowRecord {
	return &borrowDomain.BorrowRecord{
		RecordID:               id.NewID32(),
		UserID:                 userID,
		BookID:                 bookID,
		BorrowDate:             date(2024, 1, 1),
		DueDate:                date(2024, 1, 15),
		Status:                 st,
		Fine:                   decimal.Zero,
		ExtensionRequestStatus: borrowDomain.ExtensionNone,
		StatusUpdatedAt:        time.Now().UTC(),
	}
}

func makeBook(total, available int) *bookDomain.Book {
	return &bookDomain.Book{
		BookID:          id.NewID32(),
		Title:           "Structure and Interpretation of Computer Programs",
		Author:          "Abelson, Sussman",
		LoanDays:        14,
		TotalCopies:     total,
		AvailableCopies: available,
	}
}

func makeUser(username string, role actor.Role) *userDomain.User {
	return &userDomain.User{
		UserID:       id.NewID32(),
		Username:     username,
		PasswordHash: "x",
		Role:         role,
	}
}
