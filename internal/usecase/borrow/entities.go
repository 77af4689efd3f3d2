package borrow

import (
	"time"

	"github.com/shopspring/decimal"

	domain "library-circulation/internal/domain/borrow"
	"library-circulation/pkg/api"
	"library-circulation/pkg/caldate"
)

type CreateBorrowInput struct {
	UserID     string
	BookID     string
	BorrowDate *time.Time // defaults to today
	DueDate    *time.Time // defaults to borrow date + the book's loan duration
}

type FinalizeReturnInput struct {
	ReturnDate *time.Time       // defaults to today
	Fine       *decimal.Decimal // defaults to the accrued overdue fine
}

type ExtensionInput struct {
	Days   float64 // truncated toward zero
	Reason string
}

type RecordDTO = api.Record

type ExtensionResultDTO = api.ExtensionResult

func toDTO(r *domain.BorrowRecord) RecordDTO {
	var ret *string
	if r.ReturnDate != nil {
		s := caldate.Format(*r.ReturnDate)
		ret = &s
	}
	return RecordDTO{
		RecordID:                 r.RecordID,
		UserID:                   r.UserID,
		BookID:                   r.BookID,
		BorrowDate:               caldate.Format(r.BorrowDate),
		DueDate:                  caldate.Format(r.DueDate),
		ReturnDate:               ret,
		Status:                   string(r.Status),
		Fine:                     r.Fine.StringFixed(2),
		FineID:                   r.FineID,
		ExtensionCount:           r.ExtensionCount,
		ExtensionTotalDays:       r.ExtensionTotalDays,
		LastExtensionDays:        r.LastExtensionDays,
		LastExtendedAt:           r.LastExtendedAt,
		LastExtensionReason:      r.LastExtensionReason,
		ExtensionRequestStatus:   string(r.ExtensionRequestStatus),
		ExtensionRequestedDays:   r.ExtensionRequestedDays,
		ExtensionRequestedAt:     r.ExtensionRequestedAt,
		ExtensionRequestedReason: r.ExtensionRequestedReason,
		ExtensionDecidedAt:       r.ExtensionDecidedAt,
		ExtensionDecidedBy:       r.ExtensionDecidedBy,
		ExtensionDecisionNote:    r.ExtensionDecisionNote,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}
}

func toDTOs(in []domain.BorrowRecord) []RecordDTO {
	out := make([]RecordDTO, 0, len(in))
	for i := range in {
		out = append(out, toDTO(&in[i]))
	}
	return out
}
