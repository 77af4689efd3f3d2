package finemock

import (
	"context"

	domain "library-circulation/internal/domain/fine"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn               func(ctx context.Context, f *domain.Fine) error
	GetByFineIDFn          func(ctx context.Context, fineID string) (*domain.Fine, error)
	GetByFineIDForUpdateFn func(ctx context.Context, fineID string) (*domain.Fine, error)
	ListAllFn              func(ctx context.Context) ([]domain.Fine, error)
	ListByUserIDFn         func(ctx context.Context, userID string) ([]domain.Fine, error)
	SaveIfStatusFn         func(ctx context.Context, f *domain.Fine, expected domain.Status) error
	CreateProofFn          func(ctx context.Context, p *domain.Proof) error
	ListProofsFn           func(ctx context.Context, fineNumericID uint64) ([]domain.Proof, error)
	CountProofsFn          func(ctx context.Context, fineNumericID uint64) (int64, error)
}

func (m *Repo) Create(ctx context.Context, f *domain.Fine) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, f)
	}
	return nil
}

func (m *Repo) GetByFineID(ctx context.Context, fineID string) (*domain.Fine, error) {
	if m.GetByFineIDFn != nil {
		return m.GetByFineIDFn(ctx, fineID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByFineIDForUpdate(ctx context.Context, fineID string) (*domain.Fine, error) {
	if m.GetByFineIDForUpdateFn != nil {
		return m.GetByFineIDForUpdateFn(ctx, fineID)
	}
	return nil, context.Canceled
}

func (m *Repo) ListAll(ctx context.Context) ([]domain.Fine, error) {
	if m.ListAllFn != nil {
		return m.ListAllFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Fine, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) SaveIfStatus(ctx context.Context, f *domain.Fine, expected domain.Status) error {
	if m.SaveIfStatusFn != nil {
		return m.SaveIfStatusFn(ctx, f, expected)
	}
	return nil
}

func (m *Repo) CreateProof(ctx context.Context, p *domain.Proof) error {
	if m.CreateProofFn != nil {
		return m.CreateProofFn(ctx, p)
	}
	return nil
}

func (m *Repo) ListProofs(ctx context.Context, fineNumericID uint64) ([]domain.Proof, error) {
	if m.ListProofsFn != nil {
		return m.ListProofsFn(ctx, fineNumericID)
	}
	return nil, context.Canceled
}

func (m *Repo) CountProofs(ctx context.Context, fineNumericID uint64) (int64, error) {
	if m.CountProofsFn != nil {
		return m.CountProofsFn(ctx, fineNumericID)
	}
	return 0, context.Canceled
}
