package fine

import (
	"time"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/apperr"
)

// staffTransitions lists what librarians and admins may do directly.
var staffTransitions = map[Status][]Status{
	StatusActive:              {StatusPaid, StatusCancelled},
	StatusPendingVerification: {StatusPaid, StatusActive},
}

func allowed(from, to Status) bool {
	for _, s := range staffTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// MarkSubmitted moves an active fine to pending_verification on behalf of
// its owner. proofCount is the number of proofs attached so far (including
// one being uploaded in the same operation). Re-submitting while already
// pending is accepted so owners can attach extra receipts.
func (f *Fine) MarkSubmitted(a actor.Actor, proofCount int) error {
	if !a.Owns(f.UserID) {
		return apperr.Unauthorized("only the fined user can submit payment proof")
	}
	if f.Status.Terminal() {
		return ErrTerminal
	}
	if proofCount < 1 {
		return ErrProofRequired
	}
	f.Status = StatusPendingVerification
	return nil
}

// Transition applies a status change requested through updateFineStatus.
func (f *Fine) Transition(a actor.Actor, to Status, now time.Time) error {
	if f.Status.Terminal() {
		return ErrTerminal
	}
	if !a.IsStaff() {
		return apperr.Unauthorized("only librarians and admins can change fine status")
	}
	if !allowed(f.Status, to) {
		return apperr.Conflict("cannot change fine from " + string(f.Status) + " to " + string(to))
	}
	f.Status = to
	if to.Terminal() {
		t := now.UTC()
		f.ResolvedAt = &t
		f.ResolvedBy = a.UserID
	}
	return nil
}
