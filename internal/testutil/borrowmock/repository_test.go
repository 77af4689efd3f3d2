package borrowmock

import (
	"context"
	"errors"
	"testing"

	domain "library-circulation/internal/domain/borrow"
)

func TestRepo_Defaults(t *testing.T) {
	ctx := context.Background()
	m := &Repo{}

	if err := m.Create(ctx, &domain.BorrowRecord{}); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
	if err := m.SaveIfUnchanged(ctx, &domain.BorrowRecord{}, domain.Snapshot{}); err != nil {
		t.Fatalf("SaveIfUnchanged default: want nil, got %v", err)
	}
	if _, err := m.GetByRecordID(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("GetByRecordID default: want context.Canceled, got %v", err)
	}
	if _, err := m.GetByRecordIDForUpdate(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Fatalf("GetByRecordIDForUpdate default: want context.Canceled, got %v", err)
	}
	if _, err := m.ListAll(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("ListAll default: want context.Canceled, got %v", err)
	}
	if _, err := m.HasActiveLoan(ctx, "u", "b"); !errors.Is(err, context.Canceled) {
		t.Fatalf("HasActiveLoan default: want context.Canceled, got %v", err)
	}
}

func TestRepo_SaveIfUnchanged_Forwards(t *testing.T) {
	ctx := context.Background()
	rec := &domain.BorrowRecord{RecordID: "R-1", Status: domain.StatusBorrowed}
	prev := domain.Snapshot{Status: domain.StatusPendingPickup, ExtensionRequestStatus: domain.ExtensionNone}

	called := false
	m := &Repo{
		SaveIfUnchangedFn: func(gotCtx context.Context, got *domain.BorrowRecord, gotPrev domain.Snapshot) error {
			called = true
			if gotCtx != ctx || got != rec || gotPrev != prev {
				t.Fatalf("SaveIfUnchanged args not forwarded")
			}
			return domain.ErrStaleTransition
		},
	}
	if err := m.SaveIfUnchanged(ctx, rec, prev); !errors.Is(err, domain.ErrStaleTransition) {
		t.Fatalf("want ErrStaleTransition, got %v", err)
	}
	if !called {
		t.Fatalf("SaveIfUnchangedFn not called")
	}
}
