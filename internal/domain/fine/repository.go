package fine

import "context"

type Repository interface {
	Create(ctx context.Context, f *Fine) error
	GetByFineID(ctx context.Context, fineID string) (*Fine, error)
	GetByFineIDForUpdate(ctx context.Context, fineID string) (*Fine, error)
	ListAll(ctx context.Context) ([]Fine, error)
	ListByUserID(ctx context.Context, userID string) ([]Fine, error)

	// SaveIfStatus persists f only if the stored status still equals
	// expected; otherwise it returns ErrStaleUpdate.
	SaveIfStatus(ctx context.Context, f *Fine, expected Status) error

	CreateProof(ctx context.Context, p *Proof) error
	ListProofs(ctx context.Context, fineNumericID uint64) ([]Proof, error)
	CountProofs(ctx context.Context, fineNumericID uint64) (int64, error)
}
