package borrow

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/book"
	domain "library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/uow"
	"library-circulation/internal/domain/user"
	"library-circulation/internal/testutil/bookmock"
	"library-circulation/internal/testutil/borrowmock"
	"library-circulation/internal/testutil/finemock"
	"library-circulation/internal/testutil/uowmock"
	"library-circulation/internal/testutil/usermock"
	"library-circulation/pkg/caldate"
)

var (
	student   = actor.Actor{UserID: "stu", Role: actor.RoleStudent}
	stranger  = actor.Actor{UserID: "other", Role: actor.RoleOther}
	librarian = actor.Actor{UserID: "lib", Role: actor.RoleLibrarian}
)

// fixture wires the function-backed mocks to small in-memory tables so the
// usecase can be driven end to end.
type fixture struct {
	records map[string]*domain.BorrowRecord
	books   map[string]*book.Book
	fines   []*fine.Fine
	saves   int
	trace   []string
	clock   time.Time

	borrows *borrowmock.Repo
	uc      *Usecase
}

func newFixture(start string) *fixture {
	now, _ := caldate.Parse(start)
	f := &fixture{
		records: map[string]*domain.BorrowRecord{},
		books: map[string]*book.Book{
			"algo": {ID: 1, BookID: "algo", Title: "Algorithms", LoanDays: 14, TotalCopies: 2, AvailableCopies: 2},
			"last": {ID: 2, BookID: "last", Title: "Last Copy", TotalCopies: 1, AvailableCopies: 0},
		},
		clock: now.Add(9 * time.Hour),
	}

	get := func(_ context.Context, recordID string) (*domain.BorrowRecord, error) {
		rec, ok := f.records[recordID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		cp := *rec
		return &cp, nil
	}
	list := func(keep func(*domain.BorrowRecord) bool) []domain.BorrowRecord {
		var out []domain.BorrowRecord
		for _, r := range f.records {
			if keep(r) {
				out = append(out, *r)
			}
		}
		return out
	}
	f.borrows = &borrowmock.Repo{
		CreateFn: func(_ context.Context, r *domain.BorrowRecord) error {
			cp := *r
			f.records[r.RecordID] = &cp
			return nil
		},
		GetByRecordIDFn:          get,
		GetByRecordIDForUpdateFn: get,
		ListAllFn: func(context.Context) ([]domain.BorrowRecord, error) {
			return list(func(*domain.BorrowRecord) bool { return true }), nil
		},
		ListByUserIDFn: func(_ context.Context, userID string) ([]domain.BorrowRecord, error) {
			return list(func(r *domain.BorrowRecord) bool { return r.UserID == userID }), nil
		},
		ListActiveFn: func(context.Context) ([]domain.BorrowRecord, error) {
			return list(func(r *domain.BorrowRecord) bool { return r.Status.Active() }), nil
		},
		HasActiveLoanFn: func(_ context.Context, userID, bookID string) (bool, error) {
			f.trace = append(f.trace, "holding:"+bookID)
			return len(list(func(r *domain.BorrowRecord) bool {
				return r.UserID == userID && r.BookID == bookID && r.Status.Active()
			})) > 0, nil
		},
		SaveIfUnchangedFn: func(_ context.Context, r *domain.BorrowRecord, prev domain.Snapshot) error {
			stored, ok := f.records[r.RecordID]
			if !ok || stored.Snapshot() != prev {
				return domain.ErrStaleTransition
			}
			cp := *r
			f.records[r.RecordID] = &cp
			f.saves++
			return nil
		},
	}
	getBook := func(_ context.Context, bookID string) (*book.Book, error) {
		b, ok := f.books[bookID]
		if !ok {
			return nil, book.ErrNotFound
		}
		cp := *b
		return &cp, nil
	}
	books := &bookmock.Repo{
		GetByBookIDFn: getBook,
		GetByBookIDForUpdateFn: func(ctx context.Context, bookID string) (*book.Book, error) {
			f.trace = append(f.trace, "lock:"+bookID)
			return getBook(ctx, bookID)
		},
		AdjustAvailableFn: func(_ context.Context, numericID uint64, delta int) error {
			for _, b := range f.books {
				if b.ID != numericID {
					continue
				}
				next := b.AvailableCopies + delta
				if next < 0 || next > b.TotalCopies {
					return book.ErrUnavailable
				}
				b.AvailableCopies = next
				return nil
			}
			return book.ErrNotFound
		},
	}
	fines := &finemock.Repo{
		CreateFn: func(_ context.Context, fn *fine.Fine) error {
			f.fines = append(f.fines, fn)
			return nil
		},
	}
	users := &usermock.Repo{
		GetByUserIDFn: func(_ context.Context, userID string) (*user.User, error) {
			if userID == student.UserID {
				return &user.User{UserID: userID, Role: actor.RoleStudent}, nil
			}
			return nil, user.ErrNotFound
		},
	}

	tx := uowmock.Passthrough(uow.Repos{Borrows: f.borrows, Books: books, Fines: fines, Users: users})
	calc := fine.NewCalculator(decimal.RequireFromString("1.00"))
	f.uc = NewUsecase(f.borrows, tx, calc, 7, nil).WithClock(func() time.Time { return f.clock })
	return f
}

func (f *fixture) setDay(s string) {
	d, _ := caldate.Parse(s)
	f.clock = d.Add(9 * time.Hour)
}
