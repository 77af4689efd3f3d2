package borrow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/internal/domain/apperr"
	"library-circulation/internal/domain/book"
	domain "library-circulation/internal/domain/borrow"
	"library-circulation/pkg/caldate"
)

func mustDate(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := caldate.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return &d
}

func TestCreateSelfBorrow(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2024-01-01")

	dto, err := f.uc.CreateSelfBorrow(ctx, student, "algo")
	if err != nil {
		t.Fatalf("CreateSelfBorrow: %v", err)
	}
	if dto.Status != "pending_pickup" || dto.BorrowDate != "2024-01-01" || dto.DueDate != "2024-01-15" {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if dto.Fine != "0.00" || dto.ReturnDate != nil || len(dto.RecordID) != 32 {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	if f.books["algo"].AvailableCopies != 1 {
		t.Fatalf("available = %d, want 1", f.books["algo"].AvailableCopies)
	}

	tests := []struct {
		name    string
		bookID  string
		wantErr error
	}{
		{"already holding", "algo", domain.ErrAlreadyHolding},
		{"no copies left", "last", book.ErrUnavailable},
		{"unknown book", "nope", book.ErrNotFound},
	}
	for _, tt := range tests {
		if _, err := f.uc.CreateSelfBorrow(ctx, student, tt.bookID); !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: want %v, got %v", tt.name, tt.wantErr, err)
		}
	}
	if _, err := f.uc.CreateSelfBorrow(ctx, librarian, "algo"); !errors.Is(err, domain.ErrStaffSelfService) {
		t.Fatalf("staff self-service: %v", err)
	}
	if f.books["algo"].AvailableCopies != 1 || len(f.records) != 1 {
		t.Fatalf("failed borrows changed state: available=%d records=%d", f.books["algo"].AvailableCopies, len(f.records))
	}
}

func TestBorrow_LocksBookBeforeHoldingCheck(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2024-01-01")

	if _, err := f.uc.CreateSelfBorrow(ctx, student, "algo"); err != nil {
		t.Fatal(err)
	}
	if _, err := f.uc.CreateSelfBorrow(ctx, student, "algo"); !errors.Is(err, domain.ErrAlreadyHolding) {
		t.Fatalf("second self-borrow: %v", err)
	}
	if _, err := f.uc.CreateBorrow(ctx, librarian, CreateBorrowInput{UserID: student.UserID, BookID: "algo"}); !errors.Is(err, domain.ErrAlreadyHolding) {
		t.Fatalf("desk loan of a held title: %v", err)
	}

	want := []string{"lock:algo", "holding:algo", "lock:algo", "holding:algo", "lock:algo", "holding:algo"}
	if len(f.trace) != len(want) {
		t.Fatalf("trace = %v, want %v", f.trace, want)
	}
	for i := range want {
		if f.trace[i] != want[i] {
			t.Fatalf("trace = %v, want %v", f.trace, want)
		}
	}
	if f.books["algo"].AvailableCopies != 1 {
		t.Fatalf("available = %d, want 1", f.books["algo"].AvailableCopies)
	}
}

func TestCreateBorrow(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2024-03-10")

	if _, err := f.uc.CreateBorrow(ctx, student, CreateBorrowInput{UserID: student.UserID, BookID: "algo"}); !errors.Is(err, domain.ErrStaffOnly) {
		t.Fatalf("student desk loan: %v", err)
	}
	if _, err := f.uc.CreateBorrow(ctx, librarian, CreateBorrowInput{UserID: "ghost", BookID: "algo"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("unknown borrower: %v", err)
	}

	dto, err := f.uc.CreateBorrow(ctx, librarian, CreateBorrowInput{
		UserID:     student.UserID,
		BookID:     "algo",
		BorrowDate: mustDate(t, "2024-03-01"),
		DueDate:    mustDate(t, "2024-03-05"),
	})
	if err != nil {
		t.Fatalf("CreateBorrow: %v", err)
	}
	if dto.Status != "borrowed" || dto.DueDate != "2024-03-05" {
		t.Fatalf("unexpected dto: %+v", dto)
	}
	// backdated and already five days overdue
	if dto.Fine != "5.00" {
		t.Fatalf("fine = %s, want 5.00", dto.Fine)
	}

	_, err = f.uc.CreateBorrow(ctx, librarian, CreateBorrowInput{
		UserID:     student.UserID,
		BookID:     "algo",
		BorrowDate: mustDate(t, "2024-03-10"),
		DueDate:    mustDate(t, "2024-03-01"),
	})
	if !errors.Is(err, domain.ErrAlreadyHolding) {
		t.Fatalf("second loan of the same book: %v", err)
	}
}

func TestCreateBorrow_DefaultDates(t *testing.T) {
	f := newFixture("2024-05-01")
	f.books["algo"].LoanDays = 0

	dto, err := f.uc.CreateBorrow(context.Background(), librarian, CreateBorrowInput{UserID: student.UserID, BookID: "algo"})
	if err != nil {
		t.Fatal(err)
	}
	if dto.BorrowDate != "2024-05-01" || dto.DueDate != "2024-05-08" {
		t.Fatalf("default dates: %s..%s", dto.BorrowDate, dto.DueDate)
	}
}

func TestTransitions_NotFoundAndForbidden(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2024-01-01")

	if _, err := f.uc.ConfirmPickup(ctx, librarian, "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing record: %v", err)
	}
	rec, _ := f.uc.CreateSelfBorrow(ctx, student, "algo")
	if _, err := f.uc.Get(ctx, stranger, rec.RecordID); !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("stranger get: %v", err)
	}
	if _, err := f.uc.ConfirmPickup(ctx, student, rec.RecordID); !errors.Is(err, domain.ErrStaffOnly) {
		t.Fatalf("student pickup: %v", err)
	}
	if f.saves != 0 {
		t.Fatalf("refused transitions were saved")
	}
}

func TestList_ScopedByRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2024-01-01")
	_, _ = f.uc.CreateSelfBorrow(ctx, student, "algo")
	_, _ = f.uc.CreateSelfBorrow(ctx, stranger, "algo")

	mine, err := f.uc.List(ctx, student)
	if err != nil || len(mine) != 1 || mine[0].UserID != student.UserID {
		t.Fatalf("student list: %+v %v", mine, err)
	}
	all, err := f.uc.List(ctx, librarian)
	if err != nil || len(all) != 2 {
		t.Fatalf("staff list: %d %v", len(all), err)
	}
}

func TestStaleSaveIsConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2024-01-01")
	rec, _ := f.uc.CreateSelfBorrow(ctx, student, "algo")

	// another writer confirms pickup between our read and our save
	f.borrows.GetByRecordIDForUpdateFn = func(_ context.Context, recordID string) (*domain.BorrowRecord, error) {
		cp := *f.records[recordID]
		f.records[recordID].Status = domain.StatusBorrowed
		return &cp, nil
	}
	_, err := f.uc.ConfirmPickup(ctx, librarian, rec.RecordID)
	if !errors.Is(err, domain.ErrStaleTransition) || !errors.Is(err, apperr.ErrStateConflict) {
		t.Fatalf("want stale conflict, got %v", err)
	}
}

// The end-to-end lending scenario: self-service borrow, pickup, approved
// extension, return request and a finalized return with an explicit fine.
func TestScenario_LendExtendReturn(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2024-01-01")

	rec, err := f.uc.CreateSelfBorrow(ctx, student, "algo")
	if err != nil {
		t.Fatal(err)
	}
	id := rec.RecordID
	if rec.DueDate != "2024-01-15" {
		t.Fatalf("due = %s", rec.DueDate)
	}

	if _, err := f.uc.ConfirmPickup(ctx, librarian, id); err != nil {
		t.Fatal(err)
	}
	if _, err := f.uc.ConfirmPickup(ctx, librarian, id); !errors.Is(err, apperr.ErrStateConflict) {
		t.Fatalf("double pickup: %v", err)
	}

	f.setDay("2024-01-10")
	ext, err := f.uc.RequestExtension(ctx, student, id, ExtensionInput{Days: 3.7, Reason: "exam week"})
	if err != nil {
		t.Fatal(err)
	}
	if ext.Policy != "requires_approval" || ext.Record.ExtensionRequestStatus != "pending" || ext.Record.ExtensionRequestedDays != 3 {
		t.Fatalf("extension request: %+v", ext)
	}
	if _, err := f.uc.RequestExtension(ctx, student, id, ExtensionInput{Days: 1}); !errors.Is(err, domain.ErrExtensionPending) {
		t.Fatalf("second pending request: %v", err)
	}

	approved, err := f.uc.ApproveExtension(ctx, librarian, id, "ok")
	if err != nil {
		t.Fatal(err)
	}
	if approved.DueDate != "2024-01-18" || approved.ExtensionCount != 1 || approved.ExtensionTotalDays != 3 || approved.ExtensionRequestStatus != "approved" {
		t.Fatalf("after approval: %+v", approved)
	}
	if approved.ExtensionDecidedBy != librarian.UserID || approved.ExtensionDecisionNote != "ok" {
		t.Fatalf("decision fields: %+v", approved)
	}

	f.setDay("2024-01-19")
	if _, err := f.uc.RequestReturn(ctx, stranger, id); !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("stranger return request: %v", err)
	}
	pending, err := f.uc.RequestReturn(ctx, student, id)
	if err != nil || pending.Status != "pending_return" {
		t.Fatalf("return request: %+v %v", pending, err)
	}

	fineAmt := decimal.RequireFromString("20.00")
	done, err := f.uc.FinalizeReturn(ctx, librarian, id, FinalizeReturnInput{ReturnDate: mustDate(t, "2024-01-20"), Fine: &fineAmt})
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != "returned" || done.ReturnDate == nil || *done.ReturnDate != "2024-01-20" || done.Fine != "20.00" {
		t.Fatalf("after finalize: %+v", done)
	}
	if f.books["algo"].AvailableCopies != 2 {
		t.Fatalf("copy not returned to circulation: %d", f.books["algo"].AvailableCopies)
	}
	if len(f.fines) != 1 || f.fines[0].Amount.StringFixed(2) != "20.00" || done.FineID == nil || *done.FineID != f.fines[0].FineID {
		t.Fatalf("fine record not linked: fines=%+v dto=%+v", f.fines, done)
	}

	if _, err := f.uc.RequestExtension(ctx, librarian, id, ExtensionInput{Days: 2}); !errors.Is(err, apperr.ErrStateConflict) {
		t.Fatalf("extension on returned record: %v", err)
	}
	if _, err := f.uc.UpdateDueDate(ctx, librarian, id, *mustDate(t, "2024-02-01")); !errors.Is(err, apperr.ErrStateConflict) {
		t.Fatalf("due date on returned record: %v", err)
	}
}

func TestRequestExtension_TruncationBeforeLookup(t *testing.T) {
	f := newFixture("2024-01-01")
	f.borrows.GetByRecordIDForUpdateFn = func(context.Context, string) (*domain.BorrowRecord, error) {
		t.Fatalf("storage must not be touched for an invalid length")
		return nil, nil
	}
	for _, days := range []float64{0.9, 0, -2} {
		if _, err := f.uc.RequestExtension(context.Background(), student, "any", ExtensionInput{Days: days}); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("days=%v: want validation error, got %v", days, err)
		}
	}
}

func TestStaffExtensionAppliesImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2024-01-01")
	rec, _ := f.uc.CreateBorrow(ctx, librarian, CreateBorrowInput{UserID: student.UserID, BookID: "algo"})

	res, err := f.uc.RequestExtension(ctx, librarian, rec.RecordID, ExtensionInput{Days: 2.9})
	if err != nil {
		t.Fatal(err)
	}
	if res.Policy != "immediate" || res.Record.DueDate != "2024-01-17" || res.Record.ExtensionRequestStatus != "none" || res.Record.LastExtensionDays != 2 {
		t.Fatalf("staff extension: %+v", res)
	}
}

func TestFinalizeReturn_ComputedFineAndZeroFine(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2024-01-01")
	rec, _ := f.uc.CreateBorrow(ctx, librarian, CreateBorrowInput{UserID: student.UserID, BookID: "algo"})

	f.setDay("2024-01-18")
	done, err := f.uc.FinalizeReturn(ctx, librarian, rec.RecordID, FinalizeReturnInput{})
	if err != nil {
		t.Fatal(err)
	}
	if done.Fine != "3.00" || *done.ReturnDate != "2024-01-18" || len(f.fines) != 1 {
		t.Fatalf("computed fine: %+v fines=%d", done, len(f.fines))
	}

	g := newFixture("2024-01-01")
	rec, _ = g.uc.CreateBorrow(ctx, librarian, CreateBorrowInput{UserID: student.UserID, BookID: "algo"})
	done, err = g.uc.FinalizeReturn(ctx, librarian, rec.RecordID, FinalizeReturnInput{})
	if err != nil {
		t.Fatal(err)
	}
	if done.Fine != "0.00" || done.FineID != nil || len(g.fines) != 0 {
		t.Fatalf("on-time return opened a fine: %+v", done)
	}
}

func TestRecomputeFines(t *testing.T) {
	ctx := context.Background()
	f := newFixture("2024-01-01")
	overdue, _ := f.uc.CreateBorrow(ctx, librarian, CreateBorrowInput{UserID: student.UserID, BookID: "algo"})
	pickup, _ := f.uc.CreateSelfBorrow(ctx, stranger, "algo")

	f.setDay("2024-01-16")
	n, err := f.uc.RecomputeFines(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("changed = %d, want 1", n)
	}
	if got := f.records[overdue.RecordID].Fine.StringFixed(2); got != "1.00" {
		t.Fatalf("overdue fine = %s", got)
	}
	if !f.records[pickup.RecordID].Fine.IsZero() {
		t.Fatalf("unclaimed reservation accrued a fine: %s", f.records[pickup.RecordID].Fine)
	}

	// a second sweep on the same day changes nothing
	if n, _ := f.uc.RecomputeFines(ctx); n != 0 {
		t.Fatalf("second sweep changed %d records", n)
	}
}
