package fine

import (
	"time"

	"github.com/shopspring/decimal"

	"library-circulation/internal/domain/apperr"
)

type Status string

const (
	StatusActive              Status = "active"
	StatusPendingVerification Status = "pending_verification"
	StatusPaid                Status = "paid"
	StatusCancelled           Status = "cancelled"
)

func ParseStatus(s string) (Status, bool) {
	switch st := Status(s); st {
	case StatusActive, StatusPendingVerification, StatusPaid, StatusCancelled:
		return st, true
	}
	return "", false
}

// Terminal states accept no further actor-initiated transitions.
func (s Status) Terminal() bool { return s == StatusPaid || s == StatusCancelled }

type Reason string

const (
	ReasonOverdue Reason = "overdue"
	ReasonDamage  Reason = "damage"
	ReasonOther   Reason = "other"
)

func ParseReason(s string) (Reason, bool) {
	switch r := Reason(s); r {
	case ReasonOverdue, ReasonDamage, ReasonOther:
		return r, true
	}
	return "", false
}

var (
	ErrNotFound      = apperr.NotFound("fine not found")
	ErrTerminal      = apperr.Conflict("fine is already settled")
	ErrStaleUpdate   = apperr.Conflict("fine was modified concurrently, reload and try again")
	ErrProofRequired = apperr.Validation("attach a payment proof before submitting for verification")
)

// Table: fines
type Fine struct {
	ID         uint64          `gorm:"primaryKey;column:id" json:"-"`
	FineID     string          `gorm:"column:fine_id;size:32;uniqueIndex:ux_fines_fine_id" json:"fine_id"`
	UserID     string          `gorm:"column:user_id;size:32;not null;index:idx_fines_user" json:"user_id"`
	RecordID   *string         `gorm:"column:record_id;size:32;index:idx_fines_record" json:"record_id,omitempty"`
	Amount     decimal.Decimal `gorm:"column:amount;type:decimal(10,2);not null" json:"amount"`
	Reason     Reason          `gorm:"column:reason;size:16;not null" json:"reason"`
	Note       string          `gorm:"column:note;type:text" json:"note"`
	Status     Status          `gorm:"column:status;size:24;not null;index:idx_fines_status" json:"status"`
	ResolvedAt *time.Time      `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	ResolvedBy string          `gorm:"column:resolved_by;size:32" json:"resolved_by,omitempty"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Fine) TableName() string { return "fines" }

// Table: fine_proofs
type Proof struct {
	ID          uint64    `gorm:"primaryKey;column:id" json:"-"`
	ProofID     string    `gorm:"column:proof_id;size:32;uniqueIndex:ux_fine_proofs_proof_id" json:"proof_id"`
	FineID      uint64    `gorm:"column:fine_id;not null;index:idx_fine_proofs_fine" json:"-"`
	URL         string    `gorm:"column:url;type:text;not null" json:"url"`
	ContentType string    `gorm:"column:content_type;size:100" json:"content_type"`
	SizeBytes   int64     `gorm:"column:size_bytes" json:"size_bytes"`
	UploadedBy  string    `gorm:"column:uploaded_by;size:32" json:"uploaded_by"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Proof) TableName() string { return "fine_proofs" }
