package fine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/internal/domain/actor"
	"library-circulation/internal/domain/apperr"
	"library-circulation/internal/domain/borrow"
	domain "library-circulation/internal/domain/fine"
	"library-circulation/internal/domain/uow"
	"library-circulation/internal/domain/user"
	"library-circulation/internal/testutil/borrowmock"
	"library-circulation/internal/testutil/finemock"
	"library-circulation/internal/testutil/uowmock"
	"library-circulation/internal/testutil/usermock"
)

var (
	owner     = actor.Actor{UserID: "stu", Role: actor.RoleStudent}
	stranger  = actor.Actor{UserID: "other", Role: actor.RoleFaculty}
	librarian = actor.Actor{UserID: "lib", Role: actor.RoleLibrarian}
)

type memStore struct {
	files   map[string][]byte
	removed []string
}

func (s *memStore) Save(_ context.Context, name string, body io.Reader) (string, int64, error) {
	b, err := io.ReadAll(body)
	if err != nil {
		return "", 0, err
	}
	url := "/uploads/" + name
	s.files[url] = b
	return url, int64(len(b)), nil
}

func (s *memStore) Remove(_ context.Context, url string) error {
	delete(s.files, url)
	s.removed = append(s.removed, url)
	return nil
}

type fixture struct {
	fines  map[string]*domain.Fine
	proofs map[uint64][]domain.Proof
	store  *memStore
	repo   *finemock.Repo
	uc     *Usecase
}

func newFixture() *fixture {
	f := &fixture{
		fines: map[string]*domain.Fine{
			"F-1": {ID: 1, FineID: "F-1", UserID: owner.UserID, Amount: decimal.RequireFromString("2.50"), Reason: domain.ReasonOverdue, Status: domain.StatusActive},
		},
		proofs: map[uint64][]domain.Proof{},
		store:  &memStore{files: map[string][]byte{}},
	}
	get := func(_ context.Context, fineID string) (*domain.Fine, error) {
		fn, ok := f.fines[fineID]
		if !ok {
			return nil, domain.ErrNotFound
		}
		cp := *fn
		return &cp, nil
	}
	f.repo = &finemock.Repo{
		CreateFn: func(_ context.Context, fn *domain.Fine) error {
			fn.ID = uint64(len(f.fines) + 1)
			f.fines[fn.FineID] = fn
			return nil
		},
		GetByFineIDFn:          get,
		GetByFineIDForUpdateFn: get,
		ListAllFn: func(context.Context) ([]domain.Fine, error) {
			var out []domain.Fine
			for _, fn := range f.fines {
				out = append(out, *fn)
			}
			return out, nil
		},
		ListByUserIDFn: func(_ context.Context, userID string) ([]domain.Fine, error) {
			var out []domain.Fine
			for _, fn := range f.fines {
				if fn.UserID == userID {
					out = append(out, *fn)
				}
			}
			return out, nil
		},
		SaveIfStatusFn: func(_ context.Context, fn *domain.Fine, expected domain.Status) error {
			if f.fines[fn.FineID].Status != expected {
				return domain.ErrStaleUpdate
			}
			cp := *fn
			f.fines[fn.FineID] = &cp
			return nil
		},
		CreateProofFn: func(_ context.Context, p *domain.Proof) error {
			f.proofs[p.FineID] = append(f.proofs[p.FineID], *p)
			return nil
		},
		ListProofsFn: func(_ context.Context, id uint64) ([]domain.Proof, error) {
			return f.proofs[id], nil
		},
		CountProofsFn: func(_ context.Context, id uint64) (int64, error) {
			return int64(len(f.proofs[id])), nil
		},
	}
	users := &usermock.Repo{
		GetByUserIDFn: func(_ context.Context, userID string) (*user.User, error) {
			if userID == owner.UserID {
				return &user.User{UserID: userID}, nil
			}
			return nil, user.ErrNotFound
		},
	}
	borrows := &borrowmock.Repo{
		GetByRecordIDFn: func(_ context.Context, recordID string) (*borrow.BorrowRecord, error) {
			if recordID == "R-1" {
				return &borrow.BorrowRecord{RecordID: "R-1", UserID: owner.UserID}, nil
			}
			return nil, borrow.ErrNotFound
		},
	}
	tx := uowmock.Passthrough(uow.Repos{Fines: f.repo, Users: users, Borrows: borrows})
	f.uc = NewUsecase(f.repo, users, borrows, tx, f.store, 1024, nil).
		WithClock(func() time.Time { return time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC) })
	return f
}

func upload(name, ct, body string) ProofUpload {
	return ProofUpload{Filename: name, ContentType: ct, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	rec := "R-1"
	other := "R-9"
	tests := []struct {
		name    string
		who     actor.Actor
		in      CreateFineInput
		wantErr error
	}{
		{"damage report", librarian, CreateFineInput{UserID: owner.UserID, RecordID: &rec, Amount: decimal.RequireFromString("15.005"), Reason: "damage", Note: " torn cover "}, nil},
		{"student cannot fine", owner, CreateFineInput{UserID: owner.UserID, Amount: decimal.NewFromInt(1), Reason: "other"}, borrow.ErrStaffOnly},
		{"bad reason", librarian, CreateFineInput{UserID: owner.UserID, Amount: decimal.NewFromInt(1), Reason: "late"}, apperr.ErrValidation},
		{"zero amount", librarian, CreateFineInput{UserID: owner.UserID, Amount: decimal.Zero, Reason: "other"}, apperr.ErrValidation},
		{"unknown user", librarian, CreateFineInput{UserID: "ghost", Amount: decimal.NewFromInt(1), Reason: "other"}, user.ErrNotFound},
		{"unknown record", librarian, CreateFineInput{UserID: owner.UserID, RecordID: &other, Amount: decimal.NewFromInt(1), Reason: "other"}, borrow.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			dto, err := f.uc.Create(ctx, tt.who, tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if dto.Amount != "15.01" || dto.Status != "active" || dto.Note != "torn cover" || *dto.RecordID != "R-1" {
				t.Fatalf("unexpected dto: %+v", dto)
			}
		})
	}
}

func TestList_ScopedByRole(t *testing.T) {
	f := newFixture()
	f.fines["F-2"] = &domain.Fine{ID: 2, FineID: "F-2", UserID: stranger.UserID, Status: domain.StatusActive}

	mine, _ := f.uc.List(context.Background(), owner)
	all, _ := f.uc.List(context.Background(), librarian)
	if len(mine) != 1 || mine[0].FineID != "F-1" || len(all) != 2 {
		t.Fatalf("mine=%+v all=%d", mine, len(all))
	}
}

func TestUpdateStatus_OwnerNeedsProof(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if _, err := f.uc.UpdateStatus(ctx, owner, "F-1", "pending_verification"); !errors.Is(err, domain.ErrProofRequired) {
		t.Fatalf("submit without proof: %v", err)
	}
	f.proofs[1] = []domain.Proof{{FineID: 1, URL: "/uploads/x.png"}}
	dto, err := f.uc.UpdateStatus(ctx, owner, "F-1", "pending_verification")
	if err != nil || dto.Status != "pending_verification" {
		t.Fatalf("submit with proof: %+v %v", dto, err)
	}
	if _, err := f.uc.UpdateStatus(ctx, owner, "F-1", "paid"); !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("owner marking paid: %v", err)
	}
}

func TestUpdateStatus_StaffDecisions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.fines["F-1"].Status = domain.StatusPendingVerification

	back, err := f.uc.UpdateStatus(ctx, librarian, "F-1", "active")
	if err != nil || back.Status != "active" {
		t.Fatalf("reject proof: %+v %v", back, err)
	}
	paid, err := f.uc.UpdateStatus(ctx, librarian, "F-1", "paid")
	if err != nil || paid.Status != "paid" || paid.ResolvedBy != librarian.UserID || paid.ResolvedAt == nil {
		t.Fatalf("mark paid: %+v %v", paid, err)
	}
	for _, to := range []string{"active", "cancelled", "pending_verification"} {
		if _, err := f.uc.UpdateStatus(ctx, librarian, "F-1", to); !errors.Is(err, domain.ErrTerminal) {
			t.Fatalf("paid -> %s: want ErrTerminal, got %v", to, err)
		}
	}
	if _, err := f.uc.UpdateStatus(ctx, librarian, "F-1", "settled"); !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("unknown status: %v", err)
	}
	if _, err := f.uc.UpdateStatus(ctx, librarian, "F-404", "paid"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing fine: %v", err)
	}
}

func TestSubmitProof(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	res, err := f.uc.SubmitProof(ctx, owner, "F-1", upload("receipt.PNG", "image/png", "png-bytes"))
	if err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}
	if res.Fine.Status != "pending_verification" || !strings.HasSuffix(res.Proof.URL, ".png") || res.Proof.SizeBytes != 9 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !bytes.Equal(f.store.files[res.Proof.URL], []byte("png-bytes")) {
		t.Fatalf("file not stored")
	}

	// extra receipts are accepted while pending
	if _, err := f.uc.SubmitProof(ctx, owner, "F-1", upload("page2.pdf", "application/pdf", "%PDF")); err != nil {
		t.Fatalf("second proof: %v", err)
	}
	proofs, err := f.uc.ListProofs(ctx, librarian, "F-1")
	if err != nil || len(proofs) != 2 {
		t.Fatalf("ListProofs = %d, %v", len(proofs), err)
	}
	if _, err := f.uc.ListProofs(ctx, stranger, "F-1"); !errors.Is(err, apperr.ErrAuthorization) {
		t.Fatalf("stranger ListProofs: %v", err)
	}
}

func TestSubmitProof_Rejections(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		who     actor.Actor
		status  domain.Status
		up      ProofUpload
		wantErr error
	}{
		{"wrong type", owner, domain.StatusActive, upload("a.exe", "application/octet-stream", "MZ"), ErrUnsupportedProof},
		{"too large", owner, domain.StatusActive, upload("a.png", "image/png", strings.Repeat("x", 1025)), ErrProofTooLarge},
		{"empty", owner, domain.StatusActive, upload("a.png", "image/png", ""), ErrEmptyProof},
		{"not the owner", stranger, domain.StatusActive, upload("a.png", "image/png", "x"), apperr.ErrAuthorization},
		{"already paid", owner, domain.StatusPaid, upload("a.png", "image/png", "x"), domain.ErrTerminal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.fines["F-1"].Status = tt.status
			if _, err := f.uc.SubmitProof(ctx, tt.who, "F-1", tt.up); !errors.Is(err, tt.wantErr) {
				t.Fatalf("want %v, got %v", tt.wantErr, err)
			}
			if len(f.store.files) != 0 || len(f.proofs) != 0 {
				t.Fatalf("rejected upload left state behind")
			}
		})
	}
}

func TestSubmitProof_RemovesFileWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.repo.SaveIfStatusFn = func(context.Context, *domain.Fine, domain.Status) error {
		return domain.ErrStaleUpdate
	}
	if _, err := f.uc.SubmitProof(ctx, owner, "F-1", upload("a.jpg", "image/jpeg", "jpg")); !errors.Is(err, domain.ErrStaleUpdate) {
		t.Fatalf("want ErrStaleUpdate, got %v", err)
	}
	if len(f.store.files) != 0 || len(f.store.removed) != 1 {
		t.Fatalf("orphaned file not removed: files=%d removed=%v", len(f.store.files), f.store.removed)
	}
}
