package fine

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/apperr"
	"library-circulation/internal/domain/borrow"
	domain "library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/uow"
	"library-circulation/internal/domain/user"
	"library-circulation/pkg/id"
)

// ProofStore keeps uploaded receipts and returns the URL they are served at.
type ProofStore interface {
	Save(ctx context.Context, name string, body io.Reader) (url string, size int64, err error)
	Remove(ctx context.Context, url string) error
}

var (
	ErrUnsupportedProof = apperr.Validation("proof must be an image or a PDF")
	ErrProofTooLarge    = apperr.Validation("proof file is too large")
	ErrEmptyProof       = apperr.Validation("proof file is empty")
)

type Usecase struct {
	fines         domain.Repository
	users         user.Repository
	borrows       borrow.Repository
	uow           uow.UnitOfWork
	store         ProofStore
	maxProofBytes int64
	now           func() time.Time
	log           *zap.Logger
}

func NewUsecase(fines domain.Repository, users user.Repository, borrows borrow.Repository, tx uow.UnitOfWork, store ProofStore, maxProofBytes int64, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{
		fines:         fines,
		users:         users,
		borrows:       borrows,
		uow:           tx,
		store:         store,
		maxProofBytes: maxProofBytes,
		now:           time.Now,
		log:           log.Named("fine"),
	}
}

func (u *Usecase) WithClock(now func() time.Time) *Usecase {
	u.now = now
	return u
}

// List returns all fines for staff and the actor's own otherwise.
func (u *Usecase) List(ctx context.Context, a actor.Actor) ([]FineDTO, error) {
	var (
		fs  []domain.Fine
		err error
	)
	if a.IsStaff() {
		fs, err = u.fines.ListAll(ctx)
	} else {
		fs, err = u.fines.ListByUserID(ctx, a.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("list fines: %w", err)
	}
	out := make([]FineDTO, 0, len(fs))
	for i := range fs {
		out = append(out, toDTO(&fs[i]))
	}
	return out, nil
}

// Create opens a manual fine, e.g. for a damaged book.
func (u *Usecase) Create(ctx context.Context, a actor.Actor, in CreateFineInput) (*FineDTO, error) {
	if !a.IsStaff() {
		return nil, borrow.ErrStaffOnly
	}
	reason, ok := domain.ParseReason(in.Reason)
	if !ok {
		return nil, apperr.Validation("reason must be one of overdue, damage, other")
	}
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("amount must be greater than zero")
	}
	if _, err := u.users.GetByUserID(ctx, in.UserID); err != nil {
		return nil, err
	}
	if in.RecordID != nil {
		rec, err := u.borrows.GetByRecordID(ctx, *in.RecordID)
		if err != nil {
			return nil, err
		}
		if rec.UserID != in.UserID {
			return nil, apperr.Validation("borrow record belongs to a different user")
		}
	}

	f := &domain.Fine{
		FineID:   id.NewID32(),
		UserID:   in.UserID,
		RecordID: in.RecordID,
		Amount:   in.Amount.Round(2),
		Reason:   reason,
		Note:     strings.TrimSpace(in.Note),
		Status:   domain.StatusActive,
	}
	if err := u.fines.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create fine: %w", err)
	}
	u.log.Info("fine created",
		zap.String("fine_id", f.FineID),
		zap.String("actor_id", a.UserID),
		zap.String("user_id", f.UserID),
		zap.String("amount", f.Amount.StringFixed(2)),
		zap.String("reason", string(f.Reason)))
	dto := toDTO(f)
	return &dto, nil
}

// UpdateStatus applies an explicit status change. Owners may only submit
// for verification, and only once a proof is attached.
func (u *Usecase) UpdateStatus(ctx context.Context, a actor.Actor, fineID, status string) (*FineDTO, error) {
	to, ok := domain.ParseStatus(status)
	if !ok {
		return nil, apperr.Validation("status must be one of active, pending_verification, paid, cancelled")
	}
	var (
		dto  *FineDTO
		from domain.Status
	)
	err := u.uow.WithinFineTx(ctx, fineID, func(r uow.Repos, f *domain.Fine) error {
		from = f.Status
		if to == domain.StatusPendingVerification && !a.IsStaff() {
			n, err := r.Fines.CountProofs(ctx, f.ID)
			if err != nil {
				return fmt.Errorf("count proofs: %w", err)
			}
			if err := f.MarkSubmitted(a, int(n)); err != nil {
				return err
			}
		} else if err := f.Transition(a, to, u.now()); err != nil {
			return err
		}
		if err := r.Fines.SaveIfStatus(ctx, f, from); err != nil {
			return err
		}
		out := toDTO(f)
		dto = &out
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("fine status changed",
		zap.String("fine_id", fineID),
		zap.String("actor_id", a.UserID),
		zap.String("from", string(from)),
		zap.String("to", dto.Status))
	return dto, nil
}

// SubmitProof stores a receipt, attaches it to the fine and moves an active
// fine to pending_verification.
func (u *Usecase) SubmitProof(ctx context.Context, a actor.Actor, fineID string, up ProofUpload) (*SubmitProofResultDTO, error) {
	if err := u.checkUpload(up); err != nil {
		return nil, err
	}

	// authorise before writing anything to the store
	current, err := u.fines.GetByFineID(ctx, fineID)
	if err != nil {
		return nil, err
	}
	if err := current.MarkSubmitted(a, 1); err != nil {
		return nil, err
	}

	url, size, err := u.store.Save(ctx, proofName(up), up.Body)
	if err != nil {
		return nil, fmt.Errorf("store proof: %w", err)
	}
	if u.maxProofBytes > 0 && size > u.maxProofBytes {
		u.discard(ctx, url)
		return nil, ErrProofTooLarge
	}
	if size == 0 {
		u.discard(ctx, url)
		return nil, ErrEmptyProof
	}

	var res *SubmitProofResultDTO
	err = u.uow.WithinFineTx(ctx, fineID, func(r uow.Repos, f *domain.Fine) error {
		from := f.Status
		n, err := r.Fines.CountProofs(ctx, f.ID)
		if err != nil {
			return fmt.Errorf("count proofs: %w", err)
		}
		if err := f.MarkSubmitted(a, int(n)+1); err != nil {
			return err
		}
		p := &domain.Proof{
			ProofID:     id.NewID32(),
			FineID:      f.ID,
			URL:         url,
			ContentType: up.ContentType,
			SizeBytes:   size,
			UploadedBy:  a.UserID,
		}
		if err := r.Fines.CreateProof(ctx, p); err != nil {
			return fmt.Errorf("create proof: %w", err)
		}
		if err := r.Fines.SaveIfStatus(ctx, f, from); err != nil {
			return err
		}
		res = &SubmitProofResultDTO{Proof: toProofDTO(p), Fine: toDTO(f)}
		return nil
	})
	if err != nil {
		u.discard(ctx, url)
		return nil, err
	}
	u.log.Info("fine proof submitted",
		zap.String("fine_id", fineID),
		zap.String("proof_id", res.Proof.ProofID),
		zap.String("actor_id", a.UserID),
		zap.Int64("size_bytes", size))
	return res, nil
}

func (u *Usecase) ListProofs(ctx context.Context, a actor.Actor, fineID string) ([]ProofDTO, error) {
	f, err := u.fines.GetByFineID(ctx, fineID)
	if err != nil {
		return nil, err
	}
	if !a.CanAccess(f.UserID) {
		return nil, apperr.Unauthorized("only the fined user or library staff can view proofs")
	}
	ps, err := u.fines.ListProofs(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("list proofs: %w", err)
	}
	out := make([]ProofDTO, 0, len(ps))
	for i := range ps {
		out = append(out, toProofDTO(&ps[i]))
	}
	return out, nil
}

func (u *Usecase) checkUpload(up ProofUpload) error {
	if up.Body == nil {
		return ErrEmptyProof
	}
	if up.Size == 0 {
		return ErrEmptyProof
	}
	if u.maxProofBytes > 0 && up.Size > u.maxProofBytes {
		return ErrProofTooLarge
	}
	if !allowedProofType(up.ContentType) {
		return ErrUnsupportedProof
	}
	return nil
}

func allowedProofType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}

func (u *Usecase) discard(ctx context.Context, url string) {
	if err := u.store.Remove(ctx, url); err != nil {
		u.log.Warn("remove orphaned proof", zap.String("url", url), zap.Error(err))
	}
}

// proofName keeps the original extension so the file is served with a
// sensible type.
func proofName(up ProofUpload) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(up.Filename)))
	if len(ext) > 6 || strings.ContainsAny(ext, " \t") {
		ext = ""
	}
	return id.NewID32() + ext
}
