package borrow

import (
	"math"
	"time"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/apperr"
	"library-circulation/pkg/caldate"
)

// ExtensionPolicy says what an extension request from a given role does.
type ExtensionPolicy int

const (
	// ExtensionImmediate applies the extension on the spot.
	ExtensionImmediate ExtensionPolicy = iota + 1
	// ExtensionRequiresApproval files a request for staff to decide.
	ExtensionRequiresApproval
)

func (p ExtensionPolicy) String() string {
	switch p {
	case ExtensionImmediate:
		return "immediate"
	case ExtensionRequiresApproval:
		return "requires_approval"
	}
	return "unknown"
}

// MaxExtensionDays caps a single extension.
const MaxExtensionDays = 365

// LatestDueDate is the last day a DATE column can hold.
var LatestDueDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

func ExtensionPolicyFor(role actor.Role) ExtensionPolicy {
	if role.IsStaff() {
		return ExtensionImmediate
	}
	return ExtensionRequiresApproval
}

// TruncateDays converts a numeric extension length to whole days, rounding
// toward zero, and rejects anything outside 1..MaxExtensionDays.
func TruncateDays(days float64) (int, error) {
	if math.IsNaN(days) || math.IsInf(days, 0) {
		return 0, ErrInvalidExtension
	}
	n := math.Trunc(days)
	if n < 1 || n > MaxExtensionDays {
		return 0, ErrInvalidExtension
	}
	return int(n), nil
}

// RequestExtension asks for days more on a borrowed loan. Staff extensions
// apply immediately; everyone else files a pending request.
func (r *BorrowRecord) RequestExtension(a actor.Actor, days int, reason string, calc FineCalculator, now time.Time) (ExtensionPolicy, error) {
	if days < 1 || days > MaxExtensionDays {
		return 0, ErrInvalidExtension
	}
	if !a.CanAccess(r.UserID) {
		return 0, ErrNotOwner
	}
	switch r.Status {
	case StatusBorrowed:
	case StatusReturned:
		return 0, ErrAlreadyReturned
	default:
		return 0, apperr.Conflict("extensions can only be requested while the book is borrowed")
	}
	if r.ExtensionRequestStatus == ExtensionPending {
		return 0, ErrExtensionPending
	}

	policy := ExtensionPolicyFor(a.Role)
	switch policy {
	case ExtensionImmediate:
		if err := r.applyExtension(days, reason, calc, now); err != nil {
			return 0, err
		}
		r.ExtensionRequestStatus = ExtensionNone
	case ExtensionRequiresApproval:
		t := now.UTC()
		r.ExtensionRequestStatus = ExtensionPending
		r.ExtensionRequestedDays = days
		r.ExtensionRequestedAt = &t
		r.ExtensionRequestedReason = reason
		r.ExtensionDecidedAt = nil
		r.ExtensionDecidedBy = ""
		r.ExtensionDecisionNote = ""
	}
	return policy, nil
}

// ApproveExtension applies the pending request.
func (r *BorrowRecord) ApproveExtension(a actor.Actor, note string, calc FineCalculator, now time.Time) error {
	if err := r.checkDecision(a); err != nil {
		return err
	}
	if err := r.applyExtension(r.ExtensionRequestedDays, r.ExtensionRequestedReason, calc, now); err != nil {
		return err
	}
	r.decide(ExtensionApproved, a, note, now)
	return nil
}

// DisapproveExtension rejects the pending request, leaving dates alone.
func (r *BorrowRecord) DisapproveExtension(a actor.Actor, note string, now time.Time) error {
	if err := r.checkDecision(a); err != nil {
		return err
	}
	r.decide(ExtensionDisapproved, a, note, now)
	return nil
}

func (r *BorrowRecord) checkDecision(a actor.Actor) error {
	if !a.IsStaff() {
		return ErrStaffOnly
	}
	if r.Status == StatusReturned {
		return ErrAlreadyReturned
	}
	if r.ExtensionRequestStatus != ExtensionPending {
		return ErrNoPendingRequest
	}
	return nil
}

// applyExtension leaves the record untouched when the new due date would
// not fit in storage.
func (r *BorrowRecord) applyExtension(days int, reason string, calc FineCalculator, now time.Time) error {
	if days < 1 || days > MaxExtensionDays {
		return ErrInvalidExtension
	}
	due := caldate.AddDays(r.DueDate, days)
	if due.After(LatestDueDate) {
		return ErrDueTooLate
	}
	t := now.UTC()
	r.ExtensionCount++
	r.ExtensionTotalDays += days
	r.DueDate = due
	r.LastExtensionDays = days
	r.LastExtendedAt = &t
	r.LastExtensionReason = reason
	r.RecomputeFine(calc, now)
	return nil
}

func (r *BorrowRecord) decide(outcome ExtensionRequestStatus, a actor.Actor, note string, now time.Time) {
	t := now.UTC()
	r.ExtensionRequestStatus = outcome
	r.ExtensionDecidedAt = &t
	r.ExtensionDecidedBy = a.UserID
	r.ExtensionDecisionNote = note
}
