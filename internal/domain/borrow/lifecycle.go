package borrow

import (
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/apperr"
	"library-circulation/pkg/caldate"
)

// FineCalculator prices an overdue loan. fine.Calculator satisfies it.
type FineCalculator interface {
	Accrued(due, asOf time.Time) decimal.Decimal
}

// NewSelfService opens a self-service request: the loan waits in
// pending_pickup until staff hand the copy over.
func NewSelfService(a actor.Actor, recordID, bookID string, loanDays int, now time.Time) (*BorrowRecord, error) {
	if a.IsStaff() {
		return nil, ErrStaffSelfService
	}
	if a.UserID == "" {
		return nil, ErrNotOwner
	}
	if loanDays < 1 {
		return nil, apperr.Validation("loan duration must be at least one day")
	}
	today := caldate.Of(now)
	return newRecord(recordID, a.UserID, bookID, StatusPendingPickup, today, caldate.AddDays(today, loanDays), now), nil
}

// NewStaffLoan records a desk loan handed over immediately, so it starts
// in borrowed.
func NewStaffLoan(a actor.Actor, recordID, userID, bookID string, borrowDate, dueDate, now time.Time) (*BorrowRecord, error) {
	if !a.IsStaff() {
		return nil, ErrStaffOnly
	}
	borrowDate, dueDate = caldate.Of(borrowDate), caldate.Of(dueDate)
	if dueDate.Before(borrowDate) {
		return nil, ErrDueBeforeBorrow
	}
	if dueDate.After(LatestDueDate) {
		return nil, ErrDueTooLate
	}
	return newRecord(recordID, userID, bookID, StatusBorrowed, borrowDate, dueDate, now), nil
}

func newRecord(recordID, userID, bookID string, st Status, borrowDate, dueDate, now time.Time) *BorrowRecord {
	return &BorrowRecord{
		RecordID:               recordID,
		UserID:                 userID,
		BookID:                 bookID,
		BorrowDate:             borrowDate,
		DueDate:                dueDate,
		Status:                 st,
		Fine:                   decimal.Zero,
		ExtensionRequestStatus: ExtensionNone,
		StatusUpdatedAt:        now.UTC(),
	}
}

func (r *BorrowRecord) setStatus(st Status, now time.Time) {
	r.Status = st
	r.StatusUpdatedAt = now.UTC()
}

// ConfirmPickup: pending_pickup -> borrowed, staff only.
func (r *BorrowRecord) ConfirmPickup(a actor.Actor, now time.Time) error {
	if !a.IsStaff() {
		return ErrStaffOnly
	}
	switch r.Status {
	case StatusPendingPickup:
		r.setStatus(StatusBorrowed, now)
		return nil
	case StatusReturned:
		return ErrAlreadyReturned
	default:
		return apperr.Conflict("pickup was already confirmed for this loan")
	}
}

// ReturnRequestBlocked explains why a return cannot be requested from st.
// blocked is false when the request is allowed.
func ReturnRequestBlocked(st Status) (msg string, blocked bool) {
	switch st {
	case StatusBorrowed:
		return "", false
	case StatusPendingPickup:
		return "this book has not been picked up yet, so it cannot be returned", true
	case StatusPendingReturn:
		return "a return was already requested; library staff will confirm it when the book is handed in", true
	case StatusReturned:
		return "this book has already been returned", true
	}
	return "return cannot be requested from status " + string(st), true
}

// RequestReturn: borrowed -> pending_return, by the owner (or staff on
// their behalf).
func (r *BorrowRecord) RequestReturn(a actor.Actor, now time.Time) error {
	if !a.CanAccess(r.UserID) {
		return ErrNotOwner
	}
	if msg, blocked := ReturnRequestBlocked(r.Status); blocked {
		return apperr.Conflict(msg)
	}
	r.setStatus(StatusPendingReturn, now)
	return nil
}

// RejectReturn undoes a return request: pending_return -> borrowed.
func (r *BorrowRecord) RejectReturn(a actor.Actor, now time.Time) error {
	if !a.IsStaff() {
		return ErrStaffOnly
	}
	switch r.Status {
	case StatusPendingReturn:
		r.setStatus(StatusBorrowed, now)
		return nil
	case StatusReturned:
		return ErrAlreadyReturned
	default:
		return apperr.Conflict("there is no pending return request for this loan")
	}
}

// FinalizeReturn closes the loan. When fine is nil the accrued overdue fine
// as of returnDate is used. A still-pending extension request is closed as
// disapproved since there is no loan left to extend.
func (r *BorrowRecord) FinalizeReturn(a actor.Actor, returnDate time.Time, fine *decimal.Decimal, calc FineCalculator, now time.Time) error {
	if !a.IsStaff() {
		return ErrStaffOnly
	}
	switch r.Status {
	case StatusBorrowed, StatusPendingReturn:
	case StatusReturned:
		return ErrAlreadyReturned
	default:
		return apperr.Conflict("the book was never picked up; confirm pickup before finalizing a return")
	}
	returnDate = caldate.Of(returnDate)
	if returnDate.Before(r.BorrowDate) {
		return ErrReturnBeforeStart
	}
	amount := calc.Accrued(r.DueDate, returnDate)
	if fine != nil {
		if fine.IsNegative() {
			return ErrNegativeFine
		}
		amount = fine.Round(2)
	}

	if r.ExtensionRequestStatus == ExtensionPending {
		r.decide(ExtensionDisapproved, a, "loan returned before a decision was made", now)
	}
	r.ReturnDate = &returnDate
	r.Fine = amount
	r.setStatus(StatusReturned, now)
	return nil
}

// UpdateDueDate lets staff move the due date of an active loan; the fine is
// recomputed as of today.
func (r *BorrowRecord) UpdateDueDate(a actor.Actor, due time.Time, calc FineCalculator, now time.Time) error {
	if !a.IsStaff() {
		return ErrStaffOnly
	}
	if !r.Status.Active() {
		return ErrAlreadyReturned
	}
	due = caldate.Of(due)
	if due.Before(r.BorrowDate) {
		return ErrDueBeforeBorrow
	}
	if due.After(LatestDueDate) {
		return ErrDueTooLate
	}
	r.DueDate = due
	r.RecomputeFine(calc, now)
	return nil
}

// RecomputeFine refreshes the accrued fine of a loan in the borrower's hands
// and reports whether it changed. Returned loans keep their final fine and
// unclaimed reservations accrue nothing.
func (r *BorrowRecord) RecomputeFine(calc FineCalculator, now time.Time) bool {
	if !r.Status.Accruing() {
		return false
	}
	next := calc.Accrued(r.DueDate, caldate.Of(now))
	if next.Equal(r.Fine) {
		return false
	}
	r.Fine = next
	return true
}
