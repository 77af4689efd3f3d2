package fine

import (
	"io"

	"github.com/shopspring/decimal"

	domain "library-circulation/internal/domain/fine"
	"library-circulation/pkg/api"
)

type CreateFineInput struct {
	UserID   string
	RecordID *string
	Amount   decimal.Decimal
	Reason   string
	Note     string
}

// ProofUpload is one receipt being attached to a fine.
type ProofUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type (
	FineDTO              = api.Fine
	ProofDTO             = api.Proof
	SubmitProofResultDTO = api.SubmitProofResult
)

func toDTO(f *domain.Fine) FineDTO {
	return FineDTO{
		FineID:     f.FineID,
		UserID:     f.UserID,
		RecordID:   f.RecordID,
		Amount:     f.Amount.StringFixed(2),
		Reason:     string(f.Reason),
		Note:       f.Note,
		Status:     string(f.Status),
		ResolvedAt: f.ResolvedAt,
		ResolvedBy: f.ResolvedBy,
		CreatedAt:  f.CreatedAt,
	}
}

func toProofDTO(p *domain.Proof) ProofDTO {
	return ProofDTO{
		ProofID:     p.ProofID,
		URL:         p.URL,
		ContentType: p.ContentType,
		SizeBytes:   p.SizeBytes,
		UploadedBy:  p.UploadedBy,
		CreatedAt:   p.CreatedAt,
	}
}
