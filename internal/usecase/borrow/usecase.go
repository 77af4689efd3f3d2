package borrow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/book"
	domain "library-circulation/internal/domain/borrow"
	"library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/uow"
	"library-circulation/pkg/caldate"
	"library-circulation/pkg/id"
)

type Usecase struct {
	borrows         domain.Repository
	uow             uow.UnitOfWork
	calc            domain.FineCalculator
	defaultLoanDays int
	now             func() time.Time
	log             *zap.Logger
}

// NewUsecase: reads go through borrows, every mutation through the UoW.
func NewUsecase(borrows domain.Repository, tx uow.UnitOfWork, calc domain.FineCalculator, defaultLoanDays int, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		borrows:         borrows,
		uow:             tx,
		calc:            calc,
		defaultLoanDays: defaultLoanDays,
		now:             time.Now,
		log:             log.Named("borrow"),
	}
}

// WithClock replaces the wall clock, for tests and replays.
func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// List returns every record for staff and the actor's own records otherwise.
func (u *Usecase) List(ctx context.Context, a actor.Actor) ([]RecordDTO, error) {
	var (
		recs []domain.BorrowRecord
		err  error
	)
	if a.IsStaff() {
		recs, err = u.borrows.ListAll(ctx)
	} else {
		recs, err = u.borrows.ListByUserID(ctx, a.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("list borrow records: %w", err)
	}
	return toDTOs(recs), nil
}

func (u *Usecase) Get(ctx context.Context, a actor.Actor, recordID string) (*RecordDTO, error) {
	rec, err := u.borrows.GetByRecordID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if !a.CanAccess(rec.UserID) {
		return nil, domain.ErrNotOwner
	}
	dto := toDTO(rec)
	return &dto, nil
}

// CreateBorrow records a desk loan for another user. The copy is handed over
// on the spot, so the record starts in borrowed.
func (u *Usecase) CreateBorrow(ctx context.Context, a actor.Actor, in CreateBorrowInput) (*RecordDTO, error) {
	if !a.IsStaff() {
		return nil, domain.ErrStaffOnly
	}
	var dto *RecordDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Users.GetByUserID(ctx, in.UserID); err != nil {
			return err
		}
		b, err := u.reserveCopy(ctx, r, in.UserID, in.BookID)
		if err != nil {
			return err
		}
		now := u.now()
		borrowDate := caldate.Of(now)
		if in.BorrowDate != nil {
			borrowDate = caldate.Of(*in.BorrowDate)
		}
		dueDate := caldate.AddDays(borrowDate, b.LoanDuration(u.defaultLoanDays))
		if in.DueDate != nil {
			dueDate = *in.DueDate
		}
		rec, err := domain.NewStaffLoan(a, id.NewID32(), in.UserID, in.BookID, borrowDate, dueDate, now)
		if err != nil {
			return err
		}
		rec.RecomputeFine(u.calc, now)
		if err := r.Borrows.Create(ctx, rec); err != nil {
			return fmt.Errorf("create borrow record: %w", err)
		}
		out := toDTO(rec)
		dto = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("borrow created",
		zap.String("record_id", dto.RecordID),
		zap.String("actor_id", a.UserID),
		zap.String("user_id", dto.UserID),
		zap.String("book_id", dto.BookID),
		zap.String("to", dto.Status))
	return dto, nil
}

// CreateSelfBorrow reserves a copy for the actor; it waits in pending_pickup
// until staff hand it over.
func (u *Usecase) CreateSelfBorrow(ctx context.Context, a actor.Actor, bookID string) (*RecordDTO, error) {
	var dto *RecordDTO
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if a.IsStaff() {
			return domain.ErrStaffSelfService
		}
		b, err := u.reserveCopy(ctx, r, a.UserID, bookID)
		if err != nil {
			return err
		}
		rec, err := domain.NewSelfService(a, id.NewID32(), bookID, b.LoanDuration(u.defaultLoanDays), u.now())
		if err != nil {
			return err
		}
		if err := r.Borrows.Create(ctx, rec); err != nil {
			return fmt.Errorf("create borrow record: %w", err)
		}
		out := toDTO(rec)
		dto = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("self-service borrow created",
		zap.String("record_id", dto.RecordID),
		zap.String("actor_id", a.UserID),
		zap.String("book_id", dto.BookID),
		zap.String("to", dto.Status))
	return dto, nil
}

// reserveCopy checks the user does not already hold the book and takes one
// copy out of availability. The book row stays locked until commit so two
// borrows of the same title by one user cannot both pass the holding check.
func (u *Usecase) reserveCopy(ctx context.Context, r uow.Repos, userID, bookID string) (*book.Book, error) {
	b, err := r.Books.GetByBookIDForUpdate(ctx, bookID)
	if err != nil {
		return nil, err
	}
	holding, err := r.Borrows.HasActiveLoan(ctx, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("check active loan: %w", err)
	}
	if holding {
		return nil, domain.ErrAlreadyHolding
	}
	if !b.Available() {
		return nil, book.ErrUnavailable
	}
	if err := r.Books.AdjustAvailable(ctx, b.ID, -1); err != nil {
		return nil, err
	}
	return b, nil
}

func (u *Usecase) ConfirmPickup(ctx context.Context, a actor.Actor, recordID string) (*RecordDTO, error) {
	return u.transition(ctx, a, "confirm_pickup", recordID, func(_ uow.Repos, rec *domain.BorrowRecord) error {
		return rec.ConfirmPickup(a, u.now())
	})
}

func (u *Usecase) RequestReturn(ctx context.Context, a actor.Actor, recordID string) (*RecordDTO, error) {
	return u.transition(ctx, a, "request_return", recordID, func(_ uow.Repos, rec *domain.BorrowRecord) error {
		return rec.RequestReturn(a, u.now())
	})
}

func (u *Usecase) RejectReturn(ctx context.Context, a actor.Actor, recordID string) (*RecordDTO, error) {
	return u.transition(ctx, a, "reject_return", recordID, func(_ uow.Repos, rec *domain.BorrowRecord) error {
		return rec.RejectReturn(a, u.now())
	})
}

// FinalizeReturn closes the loan, puts the copy back into circulation and
// opens a fine when the final amount is positive.
func (u *Usecase) FinalizeReturn(ctx context.Context, a actor.Actor, recordID string, in FinalizeReturnInput) (*RecordDTO, error) {
	return u.transition(ctx, a, "finalize_return", recordID, func(r uow.Repos, rec *domain.BorrowRecord) error {
		now := u.now()
		returnDate := now
		if in.ReturnDate != nil {
			returnDate = *in.ReturnDate
		}
		if err := rec.FinalizeReturn(a, returnDate, in.Fine, u.calc, now); err != nil {
			return err
		}

		b, err := r.Books.GetByBookID(ctx, rec.BookID)
		if err != nil {
			return err
		}
		switch err := r.Books.AdjustAvailable(ctx, b.ID, 1); {
		case errors.Is(err, book.ErrUnavailable):
			// counts already at total; keep the return and flag the drift
			u.log.Warn("available copies already at total on return",
				zap.String("record_id", rec.RecordID),
				zap.String("book_id", rec.BookID))
		case err != nil:
			return err
		}

		if rec.Fine.IsPositive() {
			f := &fine.Fine{
				FineID:   id.NewID32(),
				UserID:   rec.UserID,
				RecordID: &rec.RecordID,
				Amount:   rec.Fine,
				Reason:   fine.ReasonOverdue,
				Note:     "returned " + caldate.FormatPtr(rec.ReturnDate) + ", due " + caldate.Format(rec.DueDate),
				Status:   fine.StatusActive,
			}
			if err := r.Fines.Create(ctx, f); err != nil {
				return fmt.Errorf("create overdue fine: %w", err)
			}
			rec.FineID = &f.FineID
		}
		return nil
	})
}

func (u *Usecase) UpdateDueDate(ctx context.Context, a actor.Actor, recordID string, due time.Time) (*RecordDTO, error) {
	return u.transition(ctx, a, "update_due_date", recordID, func(_ uow.Repos, rec *domain.BorrowRecord) error {
		return rec.UpdateDueDate(a, due, u.calc, u.now())
	})
}

// RequestExtension truncates the requested length before anything else, so
// a fractional or non-positive value fails without touching storage.
func (u *Usecase) RequestExtension(ctx context.Context, a actor.Actor, recordID string, in ExtensionInput) (*ExtensionResultDTO, error) {
	days, err := domain.TruncateDays(in.Days)
	if err != nil {
		return nil, err
	}
	var policy domain.ExtensionPolicy
	dto, err := u.transition(ctx, a, "request_extension", recordID, func(_ uow.Repos, rec *domain.BorrowRecord) error {
		p, err := rec.RequestExtension(a, days, in.Reason, u.calc, u.now())
		policy = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return &ExtensionResultDTO{Policy: policy.String(), Record: *dto}, nil
}

func (u *Usecase) ApproveExtension(ctx context.Context, a actor.Actor, recordID, note string) (*RecordDTO, error) {
	return u.transition(ctx, a, "approve_extension", recordID, func(_ uow.Repos, rec *domain.BorrowRecord) error {
		return rec.ApproveExtension(a, note, u.calc, u.now())
	})
}

func (u *Usecase) DisapproveExtension(ctx context.Context, a actor.Actor, recordID, note string) (*RecordDTO, error) {
	return u.transition(ctx, a, "disapprove_extension", recordID, func(_ uow.Repos, rec *domain.BorrowRecord) error {
		return rec.DisapproveExtension(a, note, u.now())
	})
}

// transition runs fn on the locked record and persists it guarded by the
// status pair read under the lock.
func (u *Usecase) transition(ctx context.Context, a actor.Actor, op, recordID string, fn func(r uow.Repos, rec *domain.BorrowRecord) error) (*RecordDTO, error) {
	var (
		dto  *RecordDTO
		from domain.Status
	)
	err := u.uow.WithinBorrowTx(ctx, recordID, func(r uow.Repos, rec *domain.BorrowRecord) error {
		prev := rec.Snapshot()
		from = rec.Status
		if err := fn(r, rec); err != nil {
			return err
		}
		if err := r.Borrows.SaveIfUnchanged(ctx, rec, prev); err != nil {
			return err
		}
		out := toDTO(rec)
		dto = &out
		return nil
	})
	if err != nil {
		u.log.Debug("borrow transition refused",
			zap.String("op", op),
			zap.String("record_id", recordID),
			zap.String("actor_id", a.UserID),
			zap.Error(err))
		return nil, err
	}
	u.log.Info("borrow transition",
		zap.String("op", op),
		zap.String("record_id", recordID),
		zap.String("actor_id", a.UserID),
		zap.String("from", string(from)),
		zap.String("to", dto.Status))
	return dto, nil
}

// RecomputeFines refreshes the accrued fine of every active loan and returns
// how many records changed. A record that moved concurrently is skipped; the
// next sweep picks it up.
func (u *Usecase) RecomputeFines(ctx context.Context) (int, error) {
	active, err := u.borrows.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active loans: %w", err)
	}
	changed := 0
	for _, candidate := range active {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		err := u.uow.WithinBorrowTx(ctx, candidate.RecordID, func(r uow.Repos, rec *domain.BorrowRecord) error {
			prev := rec.Snapshot()
			if !rec.RecomputeFine(u.calc, u.now()) {
				return nil
			}
			if err := r.Borrows.SaveIfUnchanged(ctx, rec, prev); err != nil {
				return err
			}
			changed++
			return nil
		})
		switch {
		case errors.Is(err, domain.ErrStaleTransition), errors.Is(err, domain.ErrNotFound):
			u.log.Debug("fine recompute skipped", zap.String("record_id", candidate.RecordID), zap.Error(err))
		case err != nil:
			return changed, fmt.Errorf("recompute fine for %s: %w", candidate.RecordID, err)
		}
	}
	return changed, nil
}
